package updtemplar

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// updSheet — упрощённый лист УПД: шапка, строка позиций (5), итоги.
func updSheet() *Sheet {
	s := NewSheet("УПД")
	s.SetText(1, 1, "Счёт-фактура № ${invoice.number} от ${invoice.date}")
	s.SetText(5, 1, "${upd.status}")
	s.SetText(1, 2, "Продавец: ${issuer.name}")
	s.SetText(1, 3, `ИНН/КПП: ${issuer.taxId + " / " + issuer.taxRegCode}`)
	s.SetText(2, 3, "stale")
	s.Merge(1, 3, 3, 3) // A3:C3
	s.SetText(1, 4, "${dateFormat(invoice.date)}")
	s.SetText(2, 4, "${rowHeight(4, 30)}")
	s.SetNumber(3, 4, 42)

	for col, text := range []string{
		"${position.number}", "${position.name}", "${position.quantity}", "${position.vatRate}",
		"${position.total}", "${origin.countryCode}", "${currency.code}", "${position.sku}",
	} {
		c := s.SetText(col+1, 5, text)
		c.Style = 3
	}
	s.Rows[5].Height = 25

	s.SetText(1, 6, "Итого: ${invoice.total}")
	s.SetText(2, 6, "${someHelper(1)}")
	s.SetText(3, 6, "${position.name}")
	s.SetText(1, 7, "Подпись ${issuer.director}")
	s.SetText(2, 7, "без выражений")
	return s
}

func assertNoLeak(t *testing.T, s *Sheet) {
	t.Helper()
	for _, r := range s.RowIndexes() {
		for col, c := range s.Rows[r].Cells {
			assert.NotContains(t, c.Text, exprMarker, "cell %s", CellName(col, r))
		}
	}
}

func TestRenderSheet(t *testing.T) {
	in := updSheet()
	res, err := RenderSheet(in, testDocument(), NewOptions())
	require.NoError(t, err)
	out := res.Sheet

	assert.Equal(t, 5, res.TemplateRow)
	assert.Equal(t, []int{5, 6}, res.Rows)

	assert.Equal(t, "Счёт-фактура № 42 от 15.03.2025", out.Cell(1, 1).Text)
	assert.Equal(t, CellText, out.Cell(5, 1).Kind)
	assert.Equal(t, "1", out.Cell(5, 1).Text)
	assert.Equal(t, "Продавец: ООО «Автосервис»", out.Cell(1, 2).Text)
	assert.Equal(t, "ИНН/КПП: 7701234567 / 770101001", out.Cell(1, 3).Text)
	assert.Equal(t, "stale", out.Cell(2, 3).Text)
	assert.Equal(t, "", out.Cell(1, 4).Text)
	assert.Equal(t, "", out.Cell(2, 4).Text)
	assert.Equal(t, 42.0, out.Cell(3, 4).Number)
	assert.False(t, out.Cell(3, 4).dirty)

	type want struct {
		num   float64
		name  string
		qty   float64
		vat   string
		total float64
		sku   string
	}
	for i, w := range []want{
		{1, "Замена масла", 2, "20%", 2400, "OIL-1"},
		{2, "Диагностика", 3, DefaultNoVATLabel, 1500, MissingSKU},
	} {
		row := 5 + i
		assert.Equal(t, CellNumber, out.Cell(1, row).Kind)
		assert.Equal(t, w.num, out.Cell(1, row).Number)
		assert.Equal(t, w.name, out.Cell(2, row).Text)
		assert.Equal(t, CellNumber, out.Cell(3, row).Kind)
		assert.Equal(t, w.qty, out.Cell(3, row).Number)
		assert.Equal(t, w.vat, out.Cell(4, row).Text)
		assert.Equal(t, w.total, out.Cell(5, row).Number)
		assert.Equal(t, DashMarker, out.Cell(6, row).Text)
		assert.Equal(t, "643", out.Cell(7, row).Text)
		assert.Equal(t, w.sku, out.Cell(8, row).Text)
		assert.Equal(t, 3, out.Cell(2, row).Style)
		assert.Equal(t, 25.0, out.Rows[row].Height)
	}

	assert.Equal(t, "Итого: 3900.00", out.Cell(1, 7).Text)
	assert.Equal(t, "", out.Cell(2, 7).Text)
	assert.Equal(t, "", out.Cell(3, 7).Text)
	assert.Equal(t, "Подпись Иванов И.И.", out.Cell(1, 8).Text)
	assert.Equal(t, "без выражений", out.Cell(2, 8).Text)
	assert.False(t, out.Cell(2, 8).dirty)

	require.Len(t, res.Cleared, 2)
	assert.Equal(t, ClearedCell{Cell: "B7", Expressions: []string{"${someHelper(1)}"}}, res.Cleared[0])
	assert.Equal(t, ClearedCell{Cell: "C7", Expressions: []string{"${position.name}"}}, res.Cleared[1])

	assertNoLeak(t, out)

	// исходный лист не меняется
	assert.Equal(t, "${upd.status}", in.Cell(5, 1).Text)
	assert.Len(t, in.RowIndexes(), 7)
}

func TestRenderSheetNumericAssignment(t *testing.T) {
	s := NewSheet("УПД")
	s.SetText(1, 1, " ${position.quantity} ")
	s.SetText(2, 1, "${position.quantity} шт")
	doc := testDocument()
	doc.Items = []LineItem{{Name: "Фильтр", Quantity: 3, VATRate: VAT20, UnitGross: 100}}

	res, err := RenderSheet(s, doc, NewOptions())
	require.NoError(t, err)

	c := res.Sheet.Cell(1, 1)
	assert.Equal(t, CellNumber, c.Kind)
	assert.Equal(t, 3.0, c.Number)
	assert.Equal(t, CellText, res.Sheet.Cell(2, 1).Kind)
	assert.Equal(t, "3 шт", res.Sheet.Cell(2, 1).Text)
}

func TestRenderSheetRowCount(t *testing.T) {
	s := NewSheet("УПД")
	s.SetText(1, 20, "№")
	s.SetText(1, 21, "${position.name}")
	s.SetText(2, 21, "${position.total}")
	s.Rows[21].Height = 18
	s.SetText(1, 22, "Всего к оплате")

	doc := testDocument()
	doc.Items = nil
	for i := 0; i < 5; i++ {
		doc.Items = append(doc.Items, LineItem{Name: string(rune('A' + i)), Quantity: 1, VATRate: VAT20, UnitGross: float64(100 * (i + 1))})
	}

	res, err := RenderSheet(s, doc, NewOptions(WithTemplateRow(21)))
	require.NoError(t, err)
	out := res.Sheet
	for i := 0; i < 5; i++ {
		row := 21 + i
		assert.Equal(t, doc.Items[i].Name, out.Cell(1, row).Text)
		assert.Equal(t, float64(100*(i+1)), out.Cell(2, row).Number)
		assert.Equal(t, 18.0, out.Rows[row].Height)
	}
	assert.Equal(t, "Всего к оплате", out.Cell(1, 26).Text)
	assert.False(t, out.Cell(1, 26).dirty)
	assert.Len(t, out.RowIndexes(), 7)
}

func TestRenderSheetWithoutItems(t *testing.T) {
	s := NewSheet("УПД")
	s.SetText(1, 1, "${position.name}")
	s.SetText(1, 2, "Итого")
	doc := testDocument()
	doc.Items = nil

	res, err := RenderSheet(s, doc, NewOptions())
	require.NoError(t, err)
	assert.Nil(t, res.Rows)
	assert.Len(t, res.Sheet.RowIndexes(), 2)
	assert.Equal(t, "", res.Sheet.Cell(1, 1).Text)
	assert.Equal(t, "Итого", res.Sheet.Cell(1, 2).Text)
}

func TestRenderSheetMergeSafety(t *testing.T) {
	s := NewSheet("УПД")
	s.SetText(1, 1, "${invoice.number}")
	s.SetText(2, 1, "${invoice.number}")
	s.Merge(1, 1, 2, 1)
	var buf bytes.Buffer

	res, err := RenderSheet(s, testDocument(), NewOptions(WithLogger(zerolog.New(&buf))))
	require.NoError(t, err)
	assert.Equal(t, "42", res.Sheet.Cell(1, 1).Text)
	// подчинённая ячейка не пишется ни в одной фазе
	assert.Equal(t, "${invoice.number}", res.Sheet.Cell(2, 1).Text)
	assert.False(t, res.Sheet.Cell(2, 1).dirty)
	assert.Empty(t, res.Cleared)
	assert.Contains(t, buf.String(), `"cell":"B1"`)
}

func TestRenderSheetCleanupWarnings(t *testing.T) {
	s := NewSheet("УПД")
	s.SetText(1, 1, "до ${unknown.field} после")
	s.SetText(1, 2, "${незакрытое")
	var buf bytes.Buffer

	res, err := RenderSheet(s, testDocument(), NewOptions(WithLogger(zerolog.New(&buf))))
	require.NoError(t, err)
	assertNoLeak(t, res.Sheet)
	require.Len(t, res.Cleared, 2)
	assert.Empty(t, res.Cleared[1].Expressions)

	log := buf.String()
	assert.Equal(t, 2, strings.Count(log, `"level":"warn"`))
	assert.Contains(t, log, `"cell":"A1"`)
	assert.Contains(t, log, "${unknown.field}")
}

func TestRenderSheetIgnoresNonText(t *testing.T) {
	s := NewSheet("УПД")
	c := s.SetNumber(1, 1, 7)
	c.Text = "${invoice.number}"
	o := s.SetText(2, 1, "x")
	o.Kind = CellOther
	o.Text = "${invoice.number}"

	res, err := RenderSheet(s, testDocument(), NewOptions())
	require.NoError(t, err)
	assert.Equal(t, 7.0, res.Sheet.Cell(1, 1).Number)
	assert.False(t, res.Sheet.Cell(1, 1).dirty)
	assert.False(t, res.Sheet.Cell(2, 1).dirty)
}

func TestRenderSheetErrors(t *testing.T) {
	_, err := RenderSheet(NewSheet("УПД"), testDocument(), NewOptions(WithTemplateRow(-1)))
	assert.True(t, errors.Is(err, ErrTemplate))

	_, err = RenderSheet(nil, testDocument(), NewOptions())
	assert.True(t, errors.Is(err, ErrTemplate))

	_, err = RenderSheet(NewSheet("УПД"), nil, NewOptions())
	assert.Error(t, err)
}

func TestRenderSheetSpacedPositionExpressions(t *testing.T) {
	s := NewSheet("УПД")
	s.SetText(1, 1, "${ position.name }")
	s.SetText(2, 1, "${ position.total }")
	s.SetText(1, 2, "Итого")

	res, err := RenderSheet(s, testDocument(), NewOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.TemplateRow)
	assert.Equal(t, []int{1, 2}, res.Rows)
	assert.Empty(t, res.Cleared)

	out := res.Sheet
	assert.Equal(t, "Замена масла", out.Cell(1, 1).Text)
	assert.Equal(t, 2400.0, out.Cell(2, 1).Number)
	assert.Equal(t, "Диагностика", out.Cell(1, 2).Text)
	assert.Equal(t, 1500.0, out.Cell(2, 2).Number)
	assert.Equal(t, "Итого", out.Cell(1, 3).Text)
}

func TestRenderSheetKeepsSurroundingWhitespace(t *testing.T) {
	s := NewSheet("УПД")
	s.SetText(1, 1, "  ${invoice.number}  ")
	s.SetText(2, 1, " ${invoice.total} ")

	res, err := RenderSheet(s, testDocument(), NewOptions())
	require.NoError(t, err)

	text := res.Sheet.Cell(1, 1)
	assert.Equal(t, CellText, text.Kind)
	assert.Equal(t, "  42  ", text.Text)
	// число пишется числом без окружающих пробелов
	num := res.Sheet.Cell(2, 1)
	assert.Equal(t, CellNumber, num.Kind)
	assert.Equal(t, 3900.0, num.Number)
}
