package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an immutable currency-tagged amount in minor units.
// Operations combining two Money values require equal currencies and
// return ErrCurrencyMismatch otherwise; nothing is ever converted
// silently. Every operation returns a new value.
type Money struct {
	amount   int64
	currency Currency
}

// NewMoney creates a Money from an amount of minor units and a currency code.
func NewMoney(minorUnits int64, code string) (Money, error) {
	cur, err := LookupCurrency(code)
	if err != nil {
		return Money{}, err
	}

	return Money{amount: minorUnits, currency: cur}, nil
}

// MustNewMoney is NewMoney that panics on an unknown currency.
func MustNewMoney(minorUnits int64, code string) Money {
	m, err := NewMoney(minorUnits, code)
	if err != nil {
		panic(err)
	}

	return m
}

// Amount returns the amount in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency metadata.
func (m Money) Currency() Currency {
	return m.currency
}

// CurrencyCode returns the currency code.
func (m Money) CurrencyCode() string {
	return m.currency.Code
}

// ParseOptions controls how textual input is interpreted.
// Zero values fall back to separator "," and delimiter ".".
type ParseOptions struct {
	Separator string // thousands grouping character
	Delimiter string // decimal point character
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.Separator == "" {
		o.Separator = ","
	}
	if o.Delimiter == "" {
		o.Delimiter = "."
	}

	return o
}

// ParseMoney parses a decimal string into a Money of the given currency.
//
// All characters that are not digits, a leading sign, or the configured
// delimiter are stripped; the delimiter is then treated as the decimal
// point. A value with no digit before the delimiter (".99", "-.99") gets
// a leading zero. Fractions beyond the minor unit round to the nearest
// minor unit. Malformed input returns an error wrapping ErrParse.
func ParseMoney(input, code string, opts ParseOptions) (Money, error) {
	cur, err := LookupCurrency(code)
	if err != nil {
		return Money{}, err
	}

	opts = opts.withDefaults()

	normalized, err := normalizeAmount(input, opts.Delimiter)
	if err != nil {
		return Money{}, err
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrParse, input)
	}

	minor := d.Mul(decimal.NewFromInt(MinorUnitsPerMajor)).Round(0)

	return Money{amount: minor.IntPart(), currency: cur}, nil
}

// MustParseMoney is ParseMoney that panics on invalid input.
func MustParseMoney(input, code string, opts ParseOptions) Money {
	m, err := ParseMoney(input, code, opts)
	if err != nil {
		panic(err)
	}

	return m
}

func normalizeAmount(input, delimiter string) (string, error) {
	var b strings.Builder

	for _, r := range input {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case (r == '-' || r == '+') && b.Len() == 0:
			b.WriteRune(r)
		case string(r) == delimiter:
			b.WriteRune(r)
		}
	}

	s := b.String()
	if delimiter != "." {
		s = strings.ReplaceAll(s, delimiter, ".")
	}

	if strings.Count(s, ".") > 1 {
		return "", fmt.Errorf("%w: %q has multiple decimal points", ErrParse, input)
	}

	// Insert a leading zero for ".99" and "-.99" style input.
	switch {
	case strings.HasPrefix(s, "."):
		s = "0" + s
	case strings.HasPrefix(s, "-.") || strings.HasPrefix(s, "+."):
		s = s[:1] + "0" + s[1:]
	}

	if s == "" || s == "-" || s == "+" || !strings.ContainsAny(s, "0123456789") {
		return "", fmt.Errorf("%w: %q", ErrParse, input)
	}

	return s, nil
}

// Add returns m + other. The currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Sub returns m - other. The currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// AddMinor returns m plus an amount of minor units.
func (m Money) AddMinor(minorUnits int64) Money {
	return Money{amount: m.amount + minorUnits, currency: m.currency}
}

// SubMinor returns m minus an amount of minor units.
func (m Money) SubMinor(minorUnits int64) Money {
	return Money{amount: m.amount - minorUnits, currency: m.currency}
}

// AddAmount returns m plus a decimal amount of major units, rounded to
// the nearest minor unit.
func (m Money) AddAmount(major decimal.Decimal) Money {
	return m.AddMinor(majorToMinor(major))
}

// SubAmount returns m minus a decimal amount of major units, rounded to
// the nearest minor unit.
func (m Money) SubAmount(major decimal.Decimal) Money {
	return m.SubMinor(majorToMinor(major))
}

func majorToMinor(major decimal.Decimal) int64 {
	return major.Mul(decimal.NewFromInt(MinorUnitsPerMajor)).Round(0).IntPart()
}

// Mul returns m multiplied by an integer factor. Exact.
func (m Money) Mul(factor int64) Money {
	return Money{amount: m.amount * factor, currency: m.currency}
}

// MulDecimal returns m multiplied by a decimal factor, rounded to the
// nearest minor unit.
func (m Money) MulDecimal(factor decimal.Decimal) Money {
	product := decimal.NewFromInt(m.amount).Mul(factor).Round(0)

	return Money{amount: product.IntPart(), currency: m.currency}
}

// Neg returns m with the sign flipped.
func (m Money) Neg() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Abs returns the absolute value of m.
func (m Money) Abs() Money {
	if m.amount < 0 {
		return m.Neg()
	}

	return m
}

// Split prorates m into n shares that sum exactly to m.
//
// The integer quotient is assigned to every share, then the remainder is
// distributed one minor unit at a time to the leading shares, growing
// their magnitude away from zero. No two shares differ by more than one
// minor unit.
func (m Money) Split(n int) ([]Money, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDivisor, n)
	}

	quotient := m.amount / int64(n)
	remainder := m.amount % int64(n)

	step := int64(1)
	if remainder < 0 {
		step = -1
		remainder = -remainder
	}

	shares := make([]Money, n)
	for i := range shares {
		shares[i] = Money{amount: quotient, currency: m.currency}
	}

	for i := int64(0); i < remainder; i++ {
		shares[i].amount += step
	}

	return shares, nil
}

// Compare returns -1, 0 or 1 ordering m against other.
// The currencies must match.
func (m Money) Compare(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}

	switch {
	case m.amount < other.amount:
		return -1, nil
	case m.amount > other.amount:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equal reports whether m and other hold the same amount.
// The currencies must match.
func (m Money) Equal(other Money) (bool, error) {
	c, err := m.Compare(other)
	if err != nil {
		return false, err
	}

	return c == 0, nil
}

// IsZero reports whether the amount is zero. Never fails.
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsPositive reports whether the amount is greater than zero. Never fails.
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative reports whether the amount is less than zero. Never fails.
func (m Money) IsNegative() bool {
	return m.amount < 0
}

func (m Money) sameCurrency(other Money) error {
	if m.currency.Code != other.currency.Code {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency.Code, other.currency.Code)
	}

	return nil
}

// Formatting controls how a Money renders as text. Values produced by
// DefaultFormatting (or the configuration layer) are passed explicitly;
// there is no mutable process-wide state.
type Formatting struct {
	Separator      string // thousands grouping, default ","
	Delimiter      string // decimal point, default "."
	Symbol         bool   // render the currency symbol
	SymbolOnRight  bool   // place the symbol after the number
	SymbolSpace    bool   // space between symbol and number
	FractionalUnit bool   // render the two minor-unit digits
}

// DefaultFormatting returns the stock display options: "1,234.56" with
// the symbol on the left and no space.
func DefaultFormatting() Formatting {
	return Formatting{
		Separator:      ",",
		Delimiter:      ".",
		Symbol:         true,
		SymbolOnRight:  false,
		SymbolSpace:    false,
		FractionalUnit: true,
	}
}

// Format renders m per the given options.
func (m Money) Format(f Formatting) string {
	abs := m.amount
	if abs < 0 {
		abs = -abs
	}

	major := abs / MinorUnitsPerMajor
	minor := abs % MinorUnitsPerMajor

	out := groupThousands(fmt.Sprintf("%d", major), f.Separator)
	if f.FractionalUnit {
		out += f.Delimiter + fmt.Sprintf("%0*d", MinorUnitDigits, minor)
	}

	if f.Symbol {
		space := ""
		if f.SymbolSpace {
			space = " "
		}

		if f.SymbolOnRight {
			out = out + space + m.currency.Symbol
		} else {
			out = m.currency.Symbol + space + out
		}
	}

	if m.amount < 0 {
		out = "-" + out
	}

	return out
}

// String renders m with DefaultFormatting.
func (m Money) String() string {
	return m.Format(DefaultFormatting())
}

func groupThousands(digits, separator string) string {
	if separator == "" || len(digits) <= 3 {
		return digits
	}

	var b strings.Builder

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}

	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(separator)
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
