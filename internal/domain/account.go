package domain

import (
	"fmt"
	"strings"
	"time"
)

// AccountType classifies an account within the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}

	return false
}

// Polarity is an account's normal balance direction.
type Polarity string

const (
	DebitNormal  Polarity = "debit_normal"
	CreditNormal Polarity = "credit_normal"
)

var basePolarity = map[AccountType]Polarity{
	AccountTypeAsset:     DebitNormal,
	AccountTypeExpense:   DebitNormal,
	AccountTypeLiability: CreditNormal,
	AccountTypeEquity:    CreditNormal,
	AccountTypeRevenue:   CreditNormal,
}

// NormalPolarity derives the normal balance polarity for an account type.
// Contra accounts invert the polarity of their nominal type.
func NormalPolarity(t AccountType, contra bool) Polarity {
	p := basePolarity[t]
	if !contra {
		return p
	}

	if p == DebitNormal {
		return CreditNormal
	}

	return DebitNormal
}

// Account is one entry in the chart of accounts. Accounts are never
// deleted in normal operation; Truncate exists only for test fixtures.
type Account struct {
	ID        string
	Name      string
	Type      AccountType
	Contra    bool
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Polarity returns the account's normal balance polarity.
func (a *Account) Polarity() Polarity {
	return NormalPolarity(a.Type, a.Contra)
}

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
)

// Validate checks the required account fields.
func (a *Account) Validate() error {
	name := strings.TrimSpace(a.Name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	if !a.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, a.Type)
	}

	if _, err := LookupCurrency(a.Currency); err != nil {
		return err
	}

	return nil
}
