package updtemplar

import "strings"

// Normalize приводит входные данные к предсказуемой форме перед рендером:
// - обрезает пробелы в строковых реквизитах
// - пустую ставку позиции считает NONE
func (d *DocumentContext) Normalize() {
	d.InvoiceNumber = strings.TrimSpace(d.InvoiceNumber)
	d.OrderNumber = strings.TrimSpace(d.OrderNumber)
	d.CurrencyCode = strings.TrimSpace(d.CurrencyCode)
	d.CurrencyName = strings.TrimSpace(d.CurrencyName)
	normalizeParty(&d.Issuer)
	normalizeParty(&d.Customer)
	for i := range d.Items {
		it := &d.Items[i]
		it.Name = strings.TrimSpace(it.Name)
		it.Unit = strings.TrimSpace(it.Unit)
		it.SKU = strings.TrimSpace(it.SKU)
		if strings.TrimSpace(string(it.VATRate)) == "" {
			it.VATRate = VATNone
		}
	}
}

func normalizeParty(p *Party) {
	for _, f := range []*string{
		&p.Name, &p.LegalName, &p.TaxID, &p.TaxRegCode,
		&p.LegalAddress, &p.PostalAddress, &p.Director, &p.Accountant,
	} {
		*f = strings.TrimSpace(*f)
	}
}
