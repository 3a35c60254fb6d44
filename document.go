package updtemplar

import "time"

// VATRate — категория ставки НДС позиции.
type VATRate string

const (
	VATNone VATRate = "NONE"
	VAT5    VATRate = "VAT_5"
	VAT7    VATRate = "VAT_7"
	VAT10   VATRate = "VAT_10"
	VAT20   VATRate = "VAT_20"
	VAT22   VATRate = "VAT_22"
)

var vatFractions = map[VATRate]float64{
	VATNone: 0,
	VAT5:    0.05,
	VAT7:    0.07,
	VAT10:   0.10,
	VAT20:   0.20,
	VAT22:   0.22,
}

// Fraction возвращает ставку в долях. Неизвестная категория трактуется как NONE.
func (r VATRate) Fraction() float64 {
	return vatFractions[r]
}

// Party — реквизиты стороны документа (продавец или покупатель).
type Party struct {
	Name          string `yaml:"name" json:"name"`
	LegalName     string `yaml:"legalName" json:"legalName"`
	TaxID         string `yaml:"taxId" json:"taxId"`
	TaxRegCode    string `yaml:"taxRegCode" json:"taxRegCode"`
	LegalAddress  string `yaml:"legalAddress" json:"legalAddress"`
	PostalAddress string `yaml:"postalAddress" json:"postalAddress"`
	Director      string `yaml:"director" json:"director"`
	Accountant    string `yaml:"accountant" json:"accountant"`
	VATPayer      bool   `yaml:"vatPayer" json:"vatPayer"`
}

// LineItem — одна позиция документа. UnitGross хранится с НДС.
type LineItem struct {
	Name      string  `yaml:"name" json:"name"`
	Quantity  float64 `yaml:"quantity" json:"quantity"`
	Unit      string  `yaml:"unit" json:"unit"`
	SKU       string  `yaml:"sku" json:"sku"`
	VATRate   VATRate `yaml:"vatRate" json:"vatRate"`
	UnitGross float64 `yaml:"unitGross" json:"unitGross"`
}

// DocumentContext — все данные одного УПД. Собирается снаружи и не меняется во время рендера.
type DocumentContext struct {
	InvoiceNumber string     `yaml:"invoiceNumber" json:"invoiceNumber"`
	InvoiceDate   time.Time  `yaml:"invoiceDate" json:"invoiceDate"`
	OrderNumber   string     `yaml:"orderNumber" json:"orderNumber"`
	OrderDate     time.Time  `yaml:"orderDate" json:"orderDate"`
	CurrencyCode  string     `yaml:"currencyCode" json:"currencyCode"`
	CurrencyName  string     `yaml:"currencyName" json:"currencyName"`
	Issuer        Party      `yaml:"issuer" json:"issuer"`
	Customer      Party      `yaml:"customer" json:"customer"`
	Items         []LineItem `yaml:"items" json:"items"`
}

// effectiveRate учитывает статус плательщика НДС у продавца.
func (d *DocumentContext) effectiveRate(it *LineItem) float64 {
	if !d.Issuer.VATPayer {
		return 0
	}
	return it.VATRate.Fraction()
}

// totals суммирует округлённые построчные значения.
func (d *DocumentContext) totals() (net, vat, gross float64) {
	for i := range d.Items {
		it := &d.Items[i]
		r := d.effectiveRate(it)
		net += NetTotal(it.UnitGross, it.Quantity, r)
		vat += VATAmount(it.UnitGross, it.Quantity, r)
		gross += GrossTotal(it.UnitGross, it.Quantity)
	}
	return Round2(net), Round2(vat), Round2(gross)
}
