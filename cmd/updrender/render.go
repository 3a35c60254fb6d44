package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikitaxru/updtemplar"
	"github.com/nikitaxru/updtemplar/internal/config"
	"github.com/nikitaxru/updtemplar/internal/logging"
)

type renderFlags struct {
	template string
	data     string
	out      string
	pdf      string
	config   string
}

func newRenderCmd() *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Отрендерить шаблон в XLSX и, при необходимости, в PDF",
		Example: `  updrender render --template upd.xlsx --data doc.yaml --out upd_42.xlsx
  updrender render --template upd.xlsx --data doc.yaml --out upd_42.xlsx --pdf upd_42.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(f)
		},
	}
	cmd.Flags().StringVar(&f.template, "template", "", "шаблон XLSX")
	cmd.Flags().StringVar(&f.data, "data", "", "данные документа (YAML или JSON)")
	cmd.Flags().StringVar(&f.out, "out", "", "куда записать XLSX")
	cmd.Flags().StringVar(&f.pdf, "pdf", "", "куда записать PDF")
	cmd.Flags().StringVar(&f.config, "config", "", "файл настроек TOML")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runRender(f renderFlags) error {
	logger := logging.GetLogger("render")

	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts = append(opts, updtemplar.WithLogger(logger))

	doc, err := loadDocument(f.data)
	if err != nil {
		return err
	}
	tmpl, err := os.ReadFile(f.template)
	if err != nil {
		return fmt.Errorf("%w: %w", updtemplar.ErrTemplate, err)
	}

	xlsx, err := updtemplar.Render(tmpl, doc, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.out, xlsx, 0o644); err != nil {
		return fmt.Errorf("запись %s: %w", f.out, err)
	}
	logger.Info().Str("out", f.out).Int("items", len(doc.Items)).Msg("XLSX записан")

	if f.pdf == "" {
		return nil
	}
	pdf, err := cfg.PDFConverter().Convert(xlsx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.pdf, pdf, 0o644); err != nil {
		return fmt.Errorf("запись %s: %w", f.pdf, err)
	}
	logger.Info().Str("pdf", f.pdf).Msg("PDF записан")
	return nil
}
