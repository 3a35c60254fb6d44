package updtemplar

import (
	"sort"
	"strconv"
)

// CellKind — тип значения ячейки. Токенизируется только текст.
type CellKind int

const (
	CellText CellKind = iota + 1
	CellNumber
	CellOther // даты, логические значения, формулы, ошибки
)

// Cell — ячейка листа в памяти. Координаты 1-based.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Style  int

	dirty bool
}

// Row — строка листа: высота и ячейки по номеру колонки.
type Row struct {
	Height float64
	Cells  map[int]*Cell
}

// MergeRange — объединённый диапазон; мастер — левая верхняя ячейка.
type MergeRange struct {
	StartCol, StartRow int
	EndCol, EndRow     int
}

func (m MergeRange) contains(col, row int) bool {
	return col >= m.StartCol && col <= m.EndCol && row >= m.StartRow && row <= m.EndRow
}

// Sheet — снимок листа шаблона, не зависящий от библиотеки книг.
type Sheet struct {
	Name   string
	Rows   map[int]*Row
	Merges []MergeRange
}

// NewSheet создаёт пустой лист.
func NewSheet(name string) *Sheet {
	return &Sheet{Name: name, Rows: map[int]*Row{}}
}

func (s *Sheet) row(r int) *Row {
	rw, ok := s.Rows[r]
	if !ok {
		rw = &Row{Cells: map[int]*Cell{}}
		s.Rows[r] = rw
	}
	return rw
}

// Cell возвращает ячейку или nil.
func (s *Sheet) Cell(col, row int) *Cell {
	rw, ok := s.Rows[row]
	if !ok {
		return nil
	}
	return rw.Cells[col]
}

// SetText кладёт текстовую ячейку.
func (s *Sheet) SetText(col, row int, text string) *Cell {
	c := &Cell{Kind: CellText, Text: text}
	s.row(row).Cells[col] = c
	return c
}

// SetNumber кладёт числовую ячейку.
func (s *Sheet) SetNumber(col, row int, v float64) *Cell {
	c := &Cell{Kind: CellNumber, Number: v, Text: strconv.FormatFloat(v, 'f', -1, 64)}
	s.row(row).Cells[col] = c
	return c
}

// Merge добавляет объединённый диапазон.
func (s *Sheet) Merge(startCol, startRow, endCol, endRow int) {
	s.Merges = append(s.Merges, MergeRange{StartCol: startCol, StartRow: startRow, EndCol: endCol, EndRow: endRow})
}

// IsNonWritable — ячейка входит в объединение и не является его мастером.
func (s *Sheet) IsNonWritable(col, row int) bool {
	for _, m := range s.Merges {
		if m.contains(col, row) {
			return col != m.StartCol || row != m.StartRow
		}
	}
	return false
}

// RowIndexes возвращает номера непустых строк по возрастанию.
func (s *Sheet) RowIndexes() []int {
	out := make([]int, 0, len(s.Rows))
	for r := range s.Rows {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// cols возвращает номера колонок строки по возрастанию.
func (rw *Row) cols() []int {
	out := make([]int, 0, len(rw.Cells))
	for c := range rw.Cells {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Clone делает глубокую копию.
func (s *Sheet) Clone() *Sheet {
	out := &Sheet{Name: s.Name, Rows: make(map[int]*Row, len(s.Rows))}
	for r, rw := range s.Rows {
		out.Rows[r] = rw.clone()
	}
	out.Merges = append([]MergeRange(nil), s.Merges...)
	return out
}

func (rw *Row) clone() *Row {
	out := &Row{Height: rw.Height, Cells: make(map[int]*Cell, len(rw.Cells))}
	for c, cell := range rw.Cells {
		cp := *cell
		out.Cells[c] = &cp
	}
	return out
}

// insertRow сдвигает строки начиная с at на одну вниз. Объединения
// корректируются так же, как это делает excelize при вставке строки.
func (s *Sheet) insertRow(at int) {
	shifted := make(map[int]*Row, len(s.Rows)+1)
	for r, rw := range s.Rows {
		if r >= at {
			r++
		}
		shifted[r] = rw
	}
	s.Rows = shifted
	for i, m := range s.Merges {
		switch {
		case at <= m.StartRow:
			m.StartRow++
			m.EndRow++
		case at <= m.EndRow:
			m.EndRow++
		}
		s.Merges[i] = m
	}
}

// duplicateRowTo вставляет копию строки row на позицию row2 (row < row2),
// вместе с высотой, стилями и горизонтальными объединениями.
func (s *Sheet) duplicateRowTo(row, row2 int) {
	var cp *Row
	if src, ok := s.Rows[row]; ok {
		cp = src.clone()
	}
	s.insertRow(row2)
	if cp == nil {
		return
	}
	s.Rows[row2] = cp
	for _, m := range s.Merges {
		if m.StartRow < row2 && row2 < m.EndRow {
			return
		}
	}
	for _, m := range s.Merges {
		if m.StartRow == row && m.EndRow == row {
			s.Merge(m.StartCol, row2, m.EndCol, row2)
		}
	}
}

// ExpandRows размножает строку-шаблон под n позиций: копии вставляются сразу
// под ней до заполнения. Возвращает номера строк позиций.
func ExpandRows(s *Sheet, templateRow, n int) []int {
	if n <= 0 {
		return nil
	}
	for i := 1; i < n; i++ {
		s.duplicateRowTo(templateRow, templateRow+i)
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = templateRow + i
	}
	return rows
}

// CellName переводит координаты в адрес вида "B21".
func CellName(col, row int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name + strconv.Itoa(row)
}
