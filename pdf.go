package updtemplar

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter превращает байты XLSX в PDF.
type Converter interface {
	Convert(xlsx []byte) ([]byte, error)
}

// DefaultConverterBinary — LibreOffice в headless-режиме.
const DefaultConverterBinary = "soffice"

// SofficeConverter вызывает внешний конвертер во временном каталоге, который
// удаляется при любом исходе.
type SofficeConverter struct {
	// Binary — путь или имя исполняемого файла; пустое — DefaultConverterBinary.
	Binary string
	// TempDir — родительский каталог для рабочих каталогов; пустое — os.TempDir().
	TempDir string
}

const (
	convertInput  = "document.xlsx"
	convertOutput = "document.pdf"
)

// Convert записывает document.xlsx, ждёт завершения конвертера и читает document.pdf.
func (c SofficeConverter) Convert(xlsx []byte) ([]byte, error) {
	bin := c.Binary
	if bin == "" {
		bin = DefaultConverterBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, &ConvertError{Binary: bin, Err: err}
	}

	dir, err := os.MkdirTemp(c.TempDir, "updtemplar-pdf-")
	if err != nil {
		return nil, fmt.Errorf("%w: рабочий каталог: %w", ErrPDFUnavailable, err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	in := filepath.Join(dir, convertInput)
	if err := os.WriteFile(in, xlsx, 0o600); err != nil {
		return nil, fmt.Errorf("%w: запись %s: %w", ErrPDFUnavailable, in, err)
	}

	cmd := exec.Command(path, "--headless", "--convert-to", "pdf", "--outdir", dir, in)
	cmd.Dir = dir
	// Отдельный профиль LibreOffice на каждый вызов
	cmd.Env = append(os.Environ(), "HOME="+dir)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, &ConvertError{Binary: bin, Output: strings.TrimSpace(out.String()), Err: err}
	}

	pdf, err := os.ReadFile(filepath.Join(dir, convertOutput))
	if err != nil {
		return nil, &ConvertError{Binary: bin, Output: strings.TrimSpace(out.String()), Err: err}
	}
	return pdf, nil
}

// RenderToPDF рендерит XLSX и передаёт его конвертеру. Ошибки шаблона
// возвращаются как ErrTemplate, ошибки конвертера — как ErrPDFUnavailable.
func RenderToPDF(template []byte, doc *DocumentContext, conv Converter, opts ...Option) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("%w: конвертер не настроен", ErrPDFUnavailable)
	}
	xlsx, err := Render(template, doc, opts...)
	if err != nil {
		return nil, err
	}
	o := NewOptions(opts...)
	pdf, err := conv.Convert(xlsx)
	if err != nil {
		l := o.logger()
		l.Error().Err(err).Msg("Конвертация в PDF не удалась")
		if !errors.Is(err, ErrPDFUnavailable) {
			err = fmt.Errorf("%w: %w", ErrPDFUnavailable, err)
		}
		return nil, err
	}
	return pdf, nil
}
