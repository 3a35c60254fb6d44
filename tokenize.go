package updtemplar

import (
	"regexp"
	"strings"
)

// Выражение шаблона: ${...}, нежадно до первой закрывающей скобки.
var rxExpr = regexp.MustCompile(`\$\{[\s\S]*?\}`)

// exprMarker — признак невычисленного выражения в тексте ячейки.
const exprMarker = "${"

// Tokenize возвращает выражения ячейки в порядке появления.
func Tokenize(text string) []string {
	if !strings.Contains(text, exprMarker) {
		return nil
	}
	return rxExpr.FindAllString(text, -1)
}

// exprBody снимает обёртку ${ } и пробелы.
func exprBody(raw string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, exprMarker), "}"))
}

// soleExpr сообщает, состоит ли ячейка ровно из одного выражения.
func soleExpr(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	loc := rxExpr.FindStringIndex(trimmed)
	if loc == nil || loc[0] != 0 || loc[1] != len(trimmed) {
		return "", false
	}
	return trimmed, true
}

// substitute подставляет вычисленные значения; невычисленные выражения остаются как есть.
func substitute(text string, resolve func(raw string) (Value, bool)) string {
	return rxExpr.ReplaceAllStringFunc(text, func(raw string) string {
		v, ok := resolve(raw)
		if !ok {
			return raw
		}
		return v.String()
	})
}
