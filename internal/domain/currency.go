package domain

import (
	"fmt"
	"strings"
)

// Currency describes the display metadata for a currency code.
// Precision is fixed at two decimal digits: every currency stores
// 100 minor units per major unit.
type Currency struct {
	Code   string
	Symbol string
}

// MinorUnitsPerMajor is the fixed subunit ratio for all currencies.
const MinorUnitsPerMajor = 100

// MinorUnitDigits is the number of decimal digits in the minor unit.
const MinorUnitDigits = 2

var currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$"},
	"EUR": {Code: "EUR", Symbol: "€"},
	"GBP": {Code: "GBP", Symbol: "£"},
	"JPY": {Code: "JPY", Symbol: "¥"},
	"CNY": {Code: "CNY", Symbol: "¥"},
	"AUD": {Code: "AUD", Symbol: "A$"},
	"CAD": {Code: "CAD", Symbol: "C$"},
	"CHF": {Code: "CHF", Symbol: "CHF"},
	"SEK": {Code: "SEK", Symbol: "kr"},
	"NOK": {Code: "NOK", Symbol: "kr"},
	"NZD": {Code: "NZD", Symbol: "NZ$"},
	"SGD": {Code: "SGD", Symbol: "S$"},
	"HKD": {Code: "HKD", Symbol: "HK$"},
	"INR": {Code: "INR", Symbol: "₹"},
	"BRL": {Code: "BRL", Symbol: "R$"},
	"MXN": {Code: "MXN", Symbol: "Mex$"},
	"ZAR": {Code: "ZAR", Symbol: "R"},
	"KRW": {Code: "KRW", Symbol: "₩"},
	"TRY": {Code: "TRY", Symbol: "₺"},
	"PLN": {Code: "PLN", Symbol: "zł"},
}

// LookupCurrency resolves a currency code to its metadata.
func LookupCurrency(code string) (Currency, error) {
	c, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}

	return c, nil
}
