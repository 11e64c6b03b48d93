package domain

import (
	"fmt"
	"time"
)

// Side is the polarity tag of a single line.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Valid reports whether s is debit or credit.
func (s Side) Valid() bool {
	return s == SideDebit || s == SideCredit
}

// Line is one debit or credit of an entry, bound to one account.
// A line never exists without its parent entry.
type Line struct {
	ID        string
	EntryID   string
	AccountID string
	Side      Side
	Amount    Money
}

// Entry is an atomic, dated group of lines representing one transaction.
// Entries are immutable once posted; a correction is a new offsetting
// entry, never a mutation.
type Entry struct {
	ID        string
	Date      time.Time
	Lines     []Line
	CreatedAt time.Time
}

// Validate enforces the double-entry law: at least two lines, a single
// currency, and debit total exactly equal to credit total in minor
// units. Only a valid entry may be persisted.
func (e *Entry) Validate() error {
	if len(e.Lines) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewLines, len(e.Lines))
	}

	var (
		currency string
		debits   int64
		credits  int64
	)

	for _, line := range e.Lines {
		if !line.Side.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidSide, line.Side)
		}

		if line.Amount.IsNegative() {
			return fmt.Errorf("%w: %s", ErrNegativeAmount, line.Amount)
		}

		code := line.Amount.CurrencyCode()
		if currency == "" {
			currency = code
		} else if code != currency {
			return fmt.Errorf("%w: %s and %s", ErrMixedCurrencies, currency, code)
		}

		switch line.Side {
		case SideDebit:
			debits += line.Amount.Amount()
		case SideCredit:
			credits += line.Amount.Amount()
		}
	}

	if debits != credits {
		return fmt.Errorf("%w: debits %d, credits %d (%s minor units)",
			ErrUnbalancedEntry, debits, credits, currency)
	}

	return nil
}

// CurrencyCode returns the currency shared by the entry's lines, or ""
// for an empty entry.
func (e *Entry) CurrencyCode() string {
	if len(e.Lines) == 0 {
		return ""
	}

	return e.Lines[0].Amount.CurrencyCode()
}

// DebitTotal sums the debit lines in minor units.
func (e *Entry) DebitTotal() int64 {
	var total int64
	for _, line := range e.Lines {
		if line.Side == SideDebit {
			total += line.Amount.Amount()
		}
	}

	return total
}

// CreditTotal sums the credit lines in minor units.
func (e *Entry) CreditTotal() int64 {
	var total int64
	for _, line := range e.Lines {
		if line.Side == SideCredit {
			total += line.Amount.Amount()
		}
	}

	return total
}
