package updtemplar

import "time"

func testDocument() *DocumentContext {
	return &DocumentContext{
		InvoiceNumber: "42",
		InvoiceDate:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		OrderNumber:   "З-17",
		OrderDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrencyCode:  "643",
		CurrencyName:  "Российский рубль",
		Issuer: Party{
			Name:         "ООО «Автосервис»",
			LegalName:    "Общество с ограниченной ответственностью «Автосервис»",
			TaxID:        "7701234567",
			TaxRegCode:   "770101001",
			LegalAddress: "Москва, ул. Ленина, 1",
			Director:     "Иванов И.И.",
			Accountant:   "Петрова А.А.",
			VATPayer:     true,
		},
		Customer: Party{
			Name:  "ИП Сидоров",
			TaxID: "500100732259",
		},
		Items: []LineItem{
			{Name: "Замена масла", Quantity: 2, Unit: "шт", SKU: "OIL-1", VATRate: VAT20, UnitGross: 1200},
			{Name: "Диагностика", Quantity: 3, Unit: "усл", VATRate: VATNone, UnitGross: 500},
		},
	}
}
