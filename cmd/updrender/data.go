package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nikitaxru/updtemplar"
)

// dateLayouts — допустимые форматы дат во входном файле
var dateLayouts = []string{"2006-01-02", updtemplar.DefaultDateLayout, time.RFC3339}

// documentFile — данные документа в файле; даты хранятся строками
type documentFile struct {
	InvoiceNumber string                `yaml:"invoiceNumber"`
	InvoiceDate   string                `yaml:"invoiceDate"`
	OrderNumber   string                `yaml:"orderNumber"`
	OrderDate     string                `yaml:"orderDate"`
	CurrencyCode  string                `yaml:"currencyCode"`
	CurrencyName  string                `yaml:"currencyName"`
	Issuer        updtemplar.Party      `yaml:"issuer"`
	Customer      updtemplar.Party      `yaml:"customer"`
	Items         []updtemplar.LineItem `yaml:"items"`
}

func loadDocument(path string) (*updtemplar.DocumentContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("данные документа: %w", err)
	}
	return parseDocument(data)
}

// parseDocument разбирает YAML; JSON тоже подходит
func parseDocument(data []byte) (*updtemplar.DocumentContext, error) {
	var in documentFile
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("данные документа: %w", err)
	}

	invoiceDate, err := parseDate(in.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("invoiceDate: %w", err)
	}
	orderDate, err := parseDate(in.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("orderDate: %w", err)
	}
	doc := &updtemplar.DocumentContext{
		InvoiceNumber: in.InvoiceNumber,
		InvoiceDate:   invoiceDate,
		OrderNumber:   in.OrderNumber,
		OrderDate:     orderDate,
		CurrencyCode:  in.CurrencyCode,
		CurrencyName:  in.CurrencyName,
		Issuer:        in.Issuer,
		Customer:      in.Customer,
		Items:         in.Items,
	}
	doc.Normalize()
	return doc, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("неизвестный формат даты %q", s)
}
