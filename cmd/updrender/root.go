package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nikitaxru/updtemplar/internal/logging"
)

func newRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "updrender",
		Short: "Заполнение шаблона УПД (XLSX) данными документа",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Команда запущена")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("не указана команда")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Подробность логов (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.AddCommand(newRenderCmd())
	return rootCmd
}
