package updtemplar

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// roundEpsilon сдвигает значение перед округлением, чтобы x.xx5 в двоичном
// представлении не округлялось на копейку вниз.
const roundEpsilon = 1e-9

// Round2 округляет до копеек, половина — от нуля.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return decimal.NewFromFloat(v + roundEpsilon).Round(2).InexactFloat64()
}

// UnitNet — цена за единицу без НДС.
func UnitNet(gross, r float64) float64 {
	if r <= 0 {
		return Round2(gross)
	}
	return Round2(gross / (1 + r))
}

// NetTotal — стоимость позиции без НДС.
func NetTotal(gross, quantity, r float64) float64 {
	total := gross * quantity
	if r <= 0 {
		return Round2(total)
	}
	return Round2(total / (1 + r))
}

// VATAmount — сумма НДС по позиции.
func VATAmount(gross, quantity, r float64) float64 {
	if r <= 0 {
		return 0
	}
	return Round2(gross * quantity * r / (1 + r))
}

// GrossTotal — стоимость позиции с НДС.
func GrossTotal(gross, quantity float64) float64 {
	return Round2(gross * quantity)
}

// VATLabel — текст колонки «Налоговая ставка».
func VATLabel(vatPayer bool, rate VATRate, noVAT string) string {
	r := rate.Fraction()
	if !vatPayer || r == 0 {
		return noVAT
	}
	return strconv.FormatInt(decimal.NewFromFloat(r*100).Round(0).IntPart(), 10) + "%"
}
