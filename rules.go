package updtemplar

import (
	"strings"
	"time"
)

const (
	// StatusCode — статус УПД «1»: счёт-фактура и передаточный документ.
	StatusCode = "1"
	// MissingSKU печатается, когда у позиции нет артикула.
	MissingSKU = "--"
	// DashMarker — данные о стране происхождения не ведутся.
	DashMarker = "-"
	// UnknownMarker — данные прослеживаемости и ГТД не ведутся.
	UnknownMarker = "--"

	positionPrefix = "position."
	comboSeparator = " / "
)

// Вызовы функций форматирования исходного шаблона: визуальные эффекты не
// воспроизводятся, вызов заменяется пустой строкой.
var neutralizedPrefixes = []string{
	"dateFormat(",
	"formatDate(",
	"setRowHeight(",
	"rowHeight(",
	"mergeCells(",
	"merge(",
	"sum(",
	"autoFit(",
}

var partyFields = map[string]func(p *Party) string{
	"name":          func(p *Party) string { return p.Name },
	"legalName":     func(p *Party) string { return p.LegalName },
	"taxId":         func(p *Party) string { return p.TaxID },
	"taxRegCode":    func(p *Party) string { return p.TaxRegCode },
	"legalAddress":  func(p *Party) string { return p.LegalAddress },
	"postalAddress": func(p *Party) string { return p.PostalAddress },
	"director":      func(p *Party) string { return p.Director },
	"accountant":    func(p *Party) string { return p.Accountant },
}

func issuerOf(s Scope) *Party   { return &s.Doc.Issuer }
func customerOf(s Scope) *Party { return &s.Doc.Customer }

func builtinRules(o Options) []Rule {
	var rules []Rule
	formatDate := func(t time.Time) Value {
		if t.IsZero() {
			return textValue("")
		}
		return textValue(t.Format(o.DateLayout))
	}

	// 1. Точные совпадения
	exact := map[string]func(s Scope) Value{
		"invoice.number": func(s Scope) Value { return textValue(s.Doc.InvoiceNumber) },
		"invoice.date":   func(s Scope) Value { return formatDate(s.Doc.InvoiceDate) },
		"order.number":   func(s Scope) Value { return textValue(s.Doc.OrderNumber) },
		"order.date":     func(s Scope) Value { return formatDate(s.Doc.OrderDate) },
		"currency.code":  func(s Scope) Value { return textValue(s.Doc.CurrencyCode) },
		"currency.name":  func(s Scope) Value { return textValue(s.Doc.CurrencyName) },
		"upd.status":     func(Scope) Value { return textValue(StatusCode) },
		"invoice.netTotal": func(s Scope) Value {
			net, _, _ := s.Doc.totals()
			return numberValue(net, 2)
		},
		"invoice.vatTotal": func(s Scope) Value {
			_, vat, _ := s.Doc.totals()
			return numberValue(vat, 2)
		},
		"invoice.total": func(s Scope) Value {
			_, _, gross := s.Doc.totals()
			return numberValue(gross, 2)
		},
	}
	for field, get := range partyFields {
		get := get // копия на итерацию для go 1.21
		exact["issuer."+field] = func(s Scope) Value { return textValue(get(issuerOf(s))) }
		exact["customer."+field] = func(s Scope) Value { return textValue(get(customerOf(s))) }
	}
	rules = append(rules, Rule{
		Name:  "document-fields",
		Kind:  RuleExact,
		Match: func(body string) bool { _, ok := exact[body]; return ok },
		Resolve: func(body string, s Scope) (Value, bool) {
			return exact[body](s), true
		},
	})

	// 2. Вызовы вспомогательных функций
	rules = append(rules, Rule{
		Name: "neutralized-helpers",
		Kind: RulePrefix,
		Match: func(body string) bool {
			for _, p := range neutralizedPrefixes {
				if strings.HasPrefix(body, p) {
					return true
				}
			}
			return false
		},
		Resolve: func(string, Scope) (Value, bool) { return textValue(""), true },
	})

	// 3. Комбинации полей одной стороны
	rules = append(rules,
		comboRule("issuer-tax-ids", issuerOf, "issuer.", "taxId", "taxRegCode"),
		comboRule("customer-tax-ids", customerOf, "customer.", "taxId", "taxRegCode"),
		comboRule("issuer-name-address", issuerOf, "issuer.", "name", "legalAddress"),
		comboRule("customer-name-address", customerOf, "customer.", "name", "legalAddress"),
	)

	// 4. Поля позиции
	rules = append(rules, Rule{
		Name:  "position-fields",
		Kind:  RuleLineItem,
		Match: func(body string) bool { return strings.HasPrefix(body, positionPrefix) },
		Resolve: func(body string, s Scope) (Value, bool) {
			if s.Item == nil {
				return Value{}, false
			}
			return resolvePosition(strings.TrimPrefix(body, positionPrefix), s, o)
		},
	})

	// 5. Неотслеживаемые поля
	rules = append(rules,
		Rule{
			Name:    "origin-country",
			Kind:    RulePlaceholder,
			Match:   func(body string) bool { return body == "origin.countryCode" || body == "origin.countryName" },
			Resolve: func(string, Scope) (Value, bool) { return textValue(DashMarker), true },
		},
		Rule{
			Name: "traceability",
			Kind: RulePlaceholder,
			Match: func(body string) bool {
				return strings.HasPrefix(body, "traceability.") || strings.HasPrefix(body, "customs.")
			},
			Resolve: func(string, Scope) (Value, bool) { return textValue(UnknownMarker), true },
		},
	)
	return rules
}

// comboRule срабатывает, когда выражение содержит все фрагменты полей стороны.
// Непустые значения соединяются через " / ".
func comboRule(name string, party func(Scope) *Party, prefix string, fields ...string) Rule {
	return Rule{
		Name: name,
		Kind: RuleCombination,
		Match: func(body string) bool {
			for _, f := range fields {
				if !strings.Contains(body, prefix+f) {
					return false
				}
			}
			return true
		},
		Resolve: func(_ string, s Scope) (Value, bool) {
			p := party(s)
			parts := make([]string, 0, len(fields))
			for _, f := range fields {
				if v := strings.TrimSpace(partyFields[f](p)); v != "" {
					parts = append(parts, v)
				}
			}
			return textValue(strings.Join(parts, comboSeparator)), true
		},
	}
}

func resolvePosition(field string, s Scope, o Options) (Value, bool) {
	it := s.Item
	r := s.Doc.effectiveRate(it)
	switch field {
	case "number":
		return numberValue(float64(s.Index+1), -1), true
	case "name":
		return textValue(it.Name), true
	case "quantity":
		return numberValue(it.Quantity, -1), true
	case "unit":
		return textValue(it.Unit), true
	case "sku":
		if strings.TrimSpace(it.SKU) == "" {
			return textValue(MissingSKU), true
		}
		return textValue(it.SKU), true
	case "vatRate":
		return textValue(VATLabel(s.Doc.Issuer.VATPayer, it.VATRate, o.NoVATLabel)), true
	case "price":
		return numberValue(UnitNet(it.UnitGross, r), 2), true
	case "netTotal":
		return numberValue(NetTotal(it.UnitGross, it.Quantity, r), 2), true
	case "vatAmount":
		return numberValue(VATAmount(it.UnitGross, it.Quantity, r), 2), true
	case "total":
		return numberValue(GrossTotal(it.UnitGross, it.Quantity), 2), true
	}
	return Value{}, false
}
