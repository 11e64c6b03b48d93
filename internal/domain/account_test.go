package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalPolarity(t *testing.T) {
	tests := []struct {
		name     string
		accType  AccountType
		contra   bool
		expected Polarity
	}{
		{"asset", AccountTypeAsset, false, DebitNormal},
		{"expense", AccountTypeExpense, false, DebitNormal},
		{"liability", AccountTypeLiability, false, CreditNormal},
		{"equity", AccountTypeEquity, false, CreditNormal},
		{"revenue", AccountTypeRevenue, false, CreditNormal},
		{"contra asset", AccountTypeAsset, true, CreditNormal},
		{"contra equity", AccountTypeEquity, true, DebitNormal},
		{"contra revenue", AccountTypeRevenue, true, DebitNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalPolarity(tt.accType, tt.contra); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestAccount_Polarity(t *testing.T) {
	drawing := &Account{
		Name:     "Drawing",
		Type:     AccountTypeEquity,
		Contra:   true,
		Currency: "USD",
	}

	if got := drawing.Polarity(); got != DebitNormal {
		t.Errorf("contra equity: expected debit_normal, got %s", got)
	}

	cash := &Account{
		Name:     "Cash",
		Type:     AccountTypeAsset,
		Currency: "USD",
	}

	if got := cash.Polarity(); got != DebitNormal {
		t.Errorf("asset: expected debit_normal, got %s", got)
	}
}

func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name        string
		account     Account
		expectError error
	}{
		{
			name:    "valid",
			account: Account{Name: "Cash", Type: AccountTypeAsset, Currency: "USD"},
		},
		{
			name:        "empty name",
			account:     Account{Name: "  ", Type: AccountTypeAsset, Currency: "USD"},
			expectError: ErrInvalidAccountName,
		},
		{
			name:        "name too long",
			account:     Account{Name: strings.Repeat("x", MaxAccountNameLength+1), Type: AccountTypeAsset, Currency: "USD"},
			expectError: ErrInvalidAccountName,
		},
		{
			name:        "unknown type",
			account:     Account{Name: "Cash", Type: "bank", Currency: "USD"},
			expectError: ErrInvalidAccountType,
		},
		{
			name:        "unknown currency",
			account:     Account{Name: "Cash", Type: AccountTypeAsset, Currency: "ABC"},
			expectError: ErrUnknownCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()

			if tt.expectError == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.expectError) {
				t.Errorf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestAccountType_Valid(t *testing.T) {
	for _, typ := range []AccountType{
		AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense,
	} {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}

	if AccountType("bank").Valid() {
		t.Error("bank should not be valid")
	}
}
