package valueobjects

import "fmt"

// Money is an amount in the gateway's smallest currency unit (paise for INR).
type Money struct {
	minorUnits int64
	currency   string
}

func NewMoney(minorUnits int64, currency string) Money {
	if currency == "" {
		currency = "INR"
	}
	return Money{
		minorUnits: minorUnits,
		currency:   currency,
	}
}

func (m Money) MinorUnits() int64 {
	return m.minorUnits
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) Major() float64 {
	return float64(m.minorUnits) / 100.0
}

func (m Money) IsPositive() bool {
	return m.minorUnits > 0
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Major(), m.currency)
}
