package updtemplar

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Render заполняет шаблон XLSX данными документа и возвращает байты книги.
func Render(template []byte, doc *DocumentContext, opts ...Option) ([]byte, error) {
	o := NewOptions(opts...)
	f, err := excelize.OpenReader(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("%w: чтение книги: %w", ErrTemplate, err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := loadSheet(f, o.Sheet)
	if err != nil {
		return nil, err
	}
	res, err := RenderSheet(sheet, doc, o)
	if err != nil {
		return nil, fmt.Errorf("лист %s: %w", sheet.Name, err)
	}
	if err := applyResult(f, res); err != nil {
		return nil, fmt.Errorf("лист %s: %w", sheet.Name, err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("сохранение книги: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderFile — файловый вариант Render.
func RenderFile(templatePath, destPath string, doc *DocumentContext, opts ...Option) error {
	if doc == nil {
		return errNoDocument
	}
	o := NewOptions(opts...)
	logger := o.logger()
	start := time.Now()
	logger.Info().Str("template", templatePath).Str("dest", destPath).Int("items", len(doc.Items)).Msg("Начинаем рендер УПД")

	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	out, err := Render(tmpl, doc, opts...)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка рендеринга")
		return err
	}
	if err := os.WriteFile(destPath, out, 0o644); err != nil {
		return fmt.Errorf("сохранение %s: %w", destPath, err)
	}
	logger.Info().Dur("duration", time.Since(start)).Str("dest", destPath).Msg("Excel файл создан")
	return nil
}

// loadSheet снимает лист в модель Sheet: значения, типы, стили, высоты и объединения.
func loadSheet(f *excelize.File, name string) (*Sheet, error) {
	if name == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: в книге нет листов", ErrTemplate)
		}
		name = list[0]
	}
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: лист %q не найден", ErrTemplate, name)
	}
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: чтение листа %s: %w", ErrTemplate, name, err)
	}

	sh := NewSheet(name)
	for rIdx, row := range rows {
		rowNum := rIdx + 1
		for cIdx, val := range row {
			if val == "" {
				continue
			}
			addr, _ := excelize.CoordinatesToCellName(cIdx+1, rowNum)
			c := &Cell{Kind: CellOther, Text: val}
			c.Style, _ = f.GetCellStyle(name, addr)
			typ, _ := f.GetCellType(name, addr)
			formula, _ := f.GetCellFormula(name, addr)
			switch {
			case formula != "":
			case typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString:
				c.Kind = CellText
			case typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset:
				if n, err := strconv.ParseFloat(val, 64); err == nil {
					c.Kind = CellNumber
					c.Number = n
				}
			}
			sh.row(rowNum).Cells[cIdx+1] = c
		}
	}
	for rowNum, rw := range sh.Rows {
		rw.Height, _ = f.GetRowHeight(name, rowNum)
	}

	merges, err := f.GetMergeCells(name)
	if err != nil {
		return nil, fmt.Errorf("%w: объединения листа %s: %w", ErrTemplate, name, err)
	}
	for _, m := range merges {
		sc, sr, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		ec, er, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			continue
		}
		sh.Merge(sc, sr, ec, er)
	}
	return sh, nil
}

// applyResult переносит результат в книгу: сначала размножение строки
// средствами excelize (стили, высота, объединения), затем изменённые ячейки.
func applyResult(f *excelize.File, res *Result) error {
	sh := res.Sheet
	for i := 1; i < len(res.Rows); i++ {
		if err := f.DuplicateRowTo(sh.Name, res.TemplateRow, res.TemplateRow+i); err != nil {
			return fmt.Errorf("копирование строки %d: %w", res.TemplateRow, err)
		}
	}
	for _, row := range sh.RowIndexes() {
		rw := sh.Rows[row]
		for _, col := range rw.cols() {
			c := rw.Cells[col]
			if !c.dirty || sh.IsNonWritable(col, row) {
				continue
			}
			addr, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if c.Kind == CellNumber {
				err = f.SetCellFloat(sh.Name, addr, c.Number, -1, 64)
			} else {
				err = f.SetCellStr(sh.Name, addr, c.Text)
			}
			if err != nil {
				return fmt.Errorf("запись %s: %w", addr, err)
			}
		}
	}
	return nil
}
