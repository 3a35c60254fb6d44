package updtemplar

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplate — шаблон не читается, нет листа или строки позиций. Ошибка развёртывания, не повторяется.
	ErrTemplate = errors.New("ошибка конфигурации шаблона")
	// ErrPDFUnavailable — конвертер отсутствует или завершился с ошибкой. На путь XLSX не влияет.
	ErrPDFUnavailable = errors.New("PDF недоступен")
	// ErrConfig — некорректное правило или файл настроек.
	ErrConfig = errors.New("ошибка настроек")
)

// ConvertError хранит вывод внешнего конвертера.
type ConvertError struct {
	Binary string
	Output string
	Err    error
}

func (e *ConvertError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Binary, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Binary, e.Err, e.Output)
}

func (e *ConvertError) Unwrap() error { return e.Err }

// Is относит любую ошибку конвертации к ErrPDFUnavailable.
func (e *ConvertError) Is(target error) bool { return target == ErrPDFUnavailable }
