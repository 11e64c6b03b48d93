package domain

import "errors"

var (
	// Money errors
	ErrUnknownCurrency  = errors.New("unknown currency code")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrParse            = errors.New("cannot parse monetary value")
	ErrInvalidDivisor   = errors.New("divisor must be a positive integer")

	// Account errors
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateAccount   = errors.New("account name already exists")

	// Entry errors
	ErrTooFewLines      = errors.New("entry requires at least two lines")
	ErrUnbalancedEntry  = errors.New("entry debits do not equal credits")
	ErrMixedCurrencies  = errors.New("entry lines span multiple currencies")
	ErrInvalidSide      = errors.New("line side must be debit or credit")
	ErrNegativeAmount   = errors.New("line amount must not be negative")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrLineAccountMatch = errors.New("line currency does not match account currency")
)
