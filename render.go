package updtemplar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultDateLayout = "02.01.2006"
	DefaultNoVATLabel = "без НДС"
)

// Options — параметры рендера.
type Options struct {
	// Sheet — имя листа; пустое значение означает первый лист книги.
	Sheet string
	// TemplateRow — строка позиций (1-based); 0 — первая строка с ${position.
	TemplateRow int
	DateLayout  string
	NoVATLabel  string
	// Rules дополняют встроенную таблицу, порядок внутри группы сохраняется.
	Rules  []Rule
	Logger *zerolog.Logger
}

// Option изменяет Options.
type Option func(*Options)

func WithSheet(name string) Option { return func(o *Options) { o.Sheet = name } }

func WithTemplateRow(row int) Option { return func(o *Options) { o.TemplateRow = row } }

func WithDateLayout(layout string) Option { return func(o *Options) { o.DateLayout = layout } }

func WithNoVATLabel(label string) Option { return func(o *Options) { o.NoVATLabel = label } }

func WithRules(rules ...Rule) Option {
	return func(o *Options) { o.Rules = append(o.Rules, rules...) }
}

func WithLogger(l zerolog.Logger) Option { return func(o *Options) { o.Logger = &l } }

// NewOptions применяет opts поверх значений по умолчанию.
func NewOptions(opts ...Option) Options {
	o := Options{DateLayout: DefaultDateLayout, NoVATLabel: DefaultNoVATLabel}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return log.With().Str("component", "updtemplar").Logger()
}

// ClearedCell — ячейка, очищенная финальным проходом.
type ClearedCell struct {
	Cell        string
	Expressions []string
}

// Result — лист после рендера и сведения о размножении строк.
type Result struct {
	Sheet *Sheet
	// TemplateRow — строка позиций (0, если её нет), Rows — строки, заполненные позициями.
	TemplateRow int
	Rows        []int
	Cleared     []ClearedCell
}

var errNoDocument = errors.New("пустой контекст документа")

type renderer struct {
	sheet    *Sheet
	doc      *DocumentContext
	resolver *Resolver
	log      zerolog.Logger
}

// RenderSheet выполняет три фазы над копией листа: общий проход, проход по
// позициям и очистку. Исходный лист не меняется.
func RenderSheet(in *Sheet, doc *DocumentContext, o Options) (*Result, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: лист не загружен", ErrTemplate)
	}
	if doc == nil {
		return nil, errNoDocument
	}
	r := &renderer{
		sheet:    in.Clone(),
		doc:      doc,
		resolver: NewResolver(o),
		log:      o.logger().With().Str("sheet", in.Name).Logger(),
	}
	tpl, err := findTemplateRow(r.sheet, o.TemplateRow)
	if err != nil {
		return nil, err
	}
	res := &Result{Sheet: r.sheet, TemplateRow: tpl}

	// Фаза 1: все существующие ячейки без позиции
	r.log.Debug().Str("phase", "sheet").Msg("Рендер листа")
	for _, row := range r.sheet.RowIndexes() {
		for _, col := range r.sheet.Rows[row].cols() {
			r.renderCell(col, row, Scope{Doc: doc})
		}
	}

	// Фаза 2: сначала размножаем строку, потом заполняем
	if tpl > 0 && len(doc.Items) > 0 {
		r.log.Debug().Str("phase", "rows").Int("templateRow", tpl).Int("items", len(doc.Items)).Msg("Рендер позиций")
		res.Rows = ExpandRows(r.sheet, tpl, len(doc.Items))
		for i, row := range res.Rows {
			rw, ok := r.sheet.Rows[row]
			if !ok {
				continue
			}
			for _, col := range rw.cols() {
				r.renderCell(col, row, Scope{Doc: doc, Item: &doc.Items[i], Index: i})
			}
		}
	}

	// Фаза 3: всё, что осталось невычисленным, очищается
	res.Cleared = r.cleanup()
	r.log.Debug().Str("phase", "cleanup").Int("cleared", len(res.Cleared)).Msg("Рендер завершён")
	return res, nil
}

func (r *renderer) renderCell(col, row int, s Scope) {
	c := r.sheet.Cell(col, row)
	if c == nil || c.Kind != CellText || len(Tokenize(c.Text)) == 0 {
		return
	}
	if r.sheet.IsNonWritable(col, row) {
		return
	}
	resolve := func(raw string) (Value, bool) { return r.resolver.Resolve(raw, s) }

	// числовой результат единственного выражения пишется числом
	if raw, ok := soleExpr(c.Text); ok {
		v, ok := resolve(raw)
		if !ok {
			return
		}
		if v.Numeric {
			c.Kind = CellNumber
			c.Number = v.Number
			c.Text = v.Text
			c.dirty = true
			return
		}
		c.Text = strings.Replace(c.Text, raw, v.Text, 1)
		c.dirty = true
		return
	}
	if out := substitute(c.Text, resolve); out != c.Text {
		c.Text = out
		c.dirty = true
	}
}

func (r *renderer) cleanup() []ClearedCell {
	var cleared []ClearedCell
	for _, row := range r.sheet.RowIndexes() {
		rw := r.sheet.Rows[row]
		for _, col := range rw.cols() {
			c := rw.Cells[col]
			if c.Kind != CellText || !strings.Contains(c.Text, exprMarker) {
				continue
			}
			addr := CellName(col, row)
			exprs := Tokenize(c.Text)
			if r.sheet.IsNonWritable(col, row) {
				r.log.Warn().Str("cell", addr).Strs("expressions", exprs).Msg("Выражение в подчинённой ячейке объединения, запись пропущена")
				continue
			}
			r.log.Warn().Str("cell", addr).Strs("expressions", exprs).Msg("Невычисленное выражение очищено")
			c.Text = ""
			c.dirty = true
			cleared = append(cleared, ClearedCell{Cell: addr, Expressions: exprs})
		}
	}
	return cleared
}

// findTemplateRow возвращает строку позиций: заданную явно или первую,
// содержащую ${position.
func findTemplateRow(s *Sheet, configured int) (int, error) {
	if configured < 0 {
		return 0, fmt.Errorf("%w: некорректная строка позиций %d", ErrTemplate, configured)
	}
	if configured > 0 {
		return configured, nil
	}
	for _, row := range s.RowIndexes() {
		rw := s.Rows[row]
		for _, col := range rw.cols() {
			c := rw.Cells[col]
			if c.Kind != CellText {
				continue
			}
			for _, raw := range Tokenize(c.Text) {
				if strings.HasPrefix(exprBody(raw), positionPrefix) {
					return row, nil
				}
			}
		}
	}
	return 0, nil
}
