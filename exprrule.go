package updtemplar

import (
	"fmt"
	"strings"

	expro "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprRule строит точное правило из настроек: выражение body == match
// вычисляется программой expr-lang над полями документа.
func ExprRule(match, source string) (Rule, error) {
	match = strings.TrimSpace(match)
	if match == "" {
		return Rule{}, fmt.Errorf("%w: пустой match у правила %q", ErrConfig, source)
	}
	program, err := expro.Compile(source, expro.Env(docEnv(&DocumentContext{})))
	if err != nil {
		return Rule{}, fmt.Errorf("%w: правило %s: %w", ErrConfig, match, err)
	}
	return Rule{
		Name:  "config:" + match,
		Kind:  RuleExact,
		Match: func(body string) bool { return body == match },
		Resolve: func(_ string, s Scope) (Value, bool) {
			return runExprRule(program, s)
		},
	}, nil
}

func runExprRule(program *vm.Program, s Scope) (Value, bool) {
	out, err := expro.Run(program, docEnv(s.Doc))
	if err != nil {
		return Value{}, false
	}
	switch v := out.(type) {
	case nil:
		return textValue(""), true
	case string:
		return textValue(v), true
	case int:
		return numberValue(float64(v), -1), true
	case float64:
		return numberValue(v, -1), true
	case bool:
		if v {
			return textValue("true"), true
		}
		return textValue("false"), true
	default:
		return textValue(fmt.Sprintf("%v", v)), true
	}
}

func partyEnv(p *Party) map[string]interface{} {
	return map[string]interface{}{
		"name":          p.Name,
		"legalName":     p.LegalName,
		"taxId":         p.TaxID,
		"taxRegCode":    p.TaxRegCode,
		"legalAddress":  p.LegalAddress,
		"postalAddress": p.PostalAddress,
		"director":      p.Director,
		"accountant":    p.Accountant,
		"vatPayer":      p.VATPayer,
	}
}

// docEnv — окружение expr-lang. Структура не зависит от данных, поэтому
// программа компилируется один раз на пустом документе.
func docEnv(d *DocumentContext) map[string]interface{} {
	net, vat, gross := d.totals()
	return map[string]interface{}{
		"invoice": map[string]interface{}{
			"number":   d.InvoiceNumber,
			"date":     d.InvoiceDate,
			"total":    gross,
			"netTotal": net,
			"vatTotal": vat,
			"items":    len(d.Items),
		},
		"order": map[string]interface{}{
			"number": d.OrderNumber,
			"date":   d.OrderDate,
		},
		"currency": map[string]interface{}{
			"code": d.CurrencyCode,
			"name": d.CurrencyName,
		},
		"issuer":   partyEnv(&d.Issuer),
		"customer": partyEnv(&d.Customer),
	}
}
