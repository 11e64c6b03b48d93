package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozlov/bookkeep/internal/adapter/repository/memory"
	"github.com/akozlov/bookkeep/internal/domain"
	"github.com/akozlov/bookkeep/internal/usecase"
)

type seqIDGenerator struct {
	n int
}

func (g *seqIDGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

// ledgerFixture wires the use cases to one in-memory store, the same
// shape as the production wiring minus PostgreSQL and Redis.
type ledgerFixture struct {
	store     *memory.Store
	accountUC *usecase.AccountUseCase
	entryUC   *usecase.EntryUseCase
	ledgerUC  *usecase.LedgerUseCase
}

func newLedgerFixture() *ledgerFixture {
	store := memory.NewStore()
	idGen := &seqIDGenerator{}

	return &ledgerFixture{
		store:     store,
		accountUC: usecase.NewAccountUseCase(store, store.Accounts(), store.Outbox(), idGen),
		entryUC:   usecase.NewEntryUseCase(store, store.Accounts(), store.Entries(), store.Outbox(), idGen, nil),
		ledgerUC:  usecase.NewLedgerUseCase(store.Accounts(), store.Entries(), nil, "USD"),
	}
}

func (f *ledgerFixture) createAccount(t *testing.T, name string, typ domain.AccountType, contra bool) *domain.Account {
	t.Helper()

	account, err := f.accountUC.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Name:     name,
		Type:     typ,
		Contra:   contra,
		Currency: "USD",
	})
	require.NoError(t, err)

	return account
}

func (f *ledgerFixture) postEntry(t *testing.T, date time.Time, lines ...usecase.PostLineInput) *domain.Entry {
	t.Helper()

	entry, err := f.entryUC.PostEntry(context.Background(), usecase.PostEntryInput{
		Date:  date,
		Lines: lines,
	})
	require.NoError(t, err)

	return entry
}

func debit(accountID string, minor int64) usecase.PostLineInput {
	return usecase.PostLineInput{AccountID: accountID, Side: domain.SideDebit, MinorUnits: minor, Currency: "USD"}
}

func credit(accountID string, minor int64) usecase.PostLineInput {
	return usecase.PostLineInput{AccountID: accountID, Side: domain.SideCredit, MinorUnits: minor, Currency: "USD"}
}

func TestLedgerScenario(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	cash := f.createAccount(t, "Cash", domain.AccountTypeAsset, false)
	equity := f.createAccount(t, "Owner Equity", domain.AccountTypeEquity, false)
	drawing := f.createAccount(t, "Owner Drawing", domain.AccountTypeEquity, true)
	revenue := f.createAccount(t, "Sales Revenue", domain.AccountTypeRevenue, false)
	rent := f.createAccount(t, "Rent Expense", domain.AccountTypeExpense, false)

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	postings := []struct {
		name  string
		date  time.Time
		lines []usecase.PostLineInput
	}{
		{
			name:  "owner funds the business",
			date:  jan,
			lines: []usecase.PostLineInput{debit(cash.ID, 100000), credit(equity.ID, 100000)},
		},
		{
			name:  "a sale comes in",
			date:  feb,
			lines: []usecase.PostLineInput{debit(cash.ID, 25000), credit(revenue.ID, 25000)},
		},
		{
			name: "rent paid and a draw taken in one compound entry",
			date: mar,
			lines: []usecase.PostLineInput{
				debit(rent.ID, 8000),
				debit(drawing.ID, 5000),
				credit(cash.ID, 13000),
			},
		},
	}

	// The trial balance holds after every posting, not just at the end.
	for _, p := range postings {
		f.postEntry(t, p.date, p.lines...)

		total, err := f.ledgerUC.TrialBalance(ctx, time.Time{})
		require.NoError(t, err)
		assert.True(t, total.IsZero(), "trial balance after %q should be zero, got %s", p.name, total)
	}

	now := time.Time{}

	tests := []struct {
		name     string
		account  *domain.Account
		asOf     time.Time
		expected int64
	}{
		{"cash current", cash, now, 112000},
		{"equity current", equity, now, 100000},
		{"drawing current", drawing, now, 5000},
		{"revenue current", revenue, now, 25000},
		{"rent current", rent, now, 8000},
		{"cash before any entry", cash, jan.AddDate(0, 0, -1), 0},
		{"cash after funding", cash, jan, 100000},
		{"cash after sale", cash, feb, 125000},
		{"cash after rent and draw", cash, mar, 112000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balance, err := f.ledgerUC.Balance(ctx, tt.account.ID, tt.asOf)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, balance.Amount())
		})
	}

	total, err := f.ledgerUC.TrialBalance(ctx, time.Time{})
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "trial balance should be zero, got %s", total)

	ok, err := f.ledgerUC.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLedgerScenario_DetectsCorruptStore(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	cash := f.createAccount(t, "Cash", domain.AccountTypeAsset, false)
	equity := f.createAccount(t, "Owner Equity", domain.AccountTypeEquity, false)

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	f.postEntry(t, jan, debit(cash.ID, 100000), credit(equity.ID, 100000))

	// A stray credit with no matching debit, as a broken writer would
	// leave behind.
	f.store.InjectLine(domain.Line{
		AccountID: equity.ID,
		Side:      domain.SideCredit,
		Amount:    domain.MustNewMoney(1, "USD"),
	}, jan)

	total, err := f.ledgerUC.TrialBalance(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), total.Amount(), "stray credit shows as a credit surplus")

	ok, err := f.ledgerUC.CheckConsistency(ctx)
	require.ErrorIs(t, err, usecase.ErrInconsistentLedger)
	assert.False(t, ok)
}

func TestLedgerScenario_DuplicateAccountName(t *testing.T) {
	f := newLedgerFixture()

	f.createAccount(t, "Cash", domain.AccountTypeAsset, false)

	_, err := f.accountUC.CreateAccount(context.Background(), usecase.CreateAccountInput{
		Name:     "Cash",
		Type:     domain.AccountTypeAsset,
		Currency: "USD",
	})

	require.ErrorIs(t, err, domain.ErrDuplicateAccount)
}

func TestLedgerScenario_OutboxEventsAccumulate(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	cash := f.createAccount(t, "Cash", domain.AccountTypeAsset, false)
	equity := f.createAccount(t, "Owner Equity", domain.AccountTypeEquity, false)
	f.postEntry(t, time.Time{}, debit(cash.ID, 100), credit(equity.ID, 100))

	events, err := f.store.Outbox().GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3) // two account.created, one entry.posted

	types := make(map[string]int)
	for _, event := range events {
		types[event.EventType]++
	}
	assert.Equal(t, 2, types[domain.EventTypeAccountCreated])
	assert.Equal(t, 1, types[domain.EventTypeEntryPosted])
}

func TestLedgerScenario_ListEntriesByAccount(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()

	cash := f.createAccount(t, "Cash", domain.AccountTypeAsset, false)
	equity := f.createAccount(t, "Owner Equity", domain.AccountTypeEquity, false)
	rent := f.createAccount(t, "Rent Expense", domain.AccountTypeExpense, false)

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	first := f.postEntry(t, jan, debit(cash.ID, 1000), credit(equity.ID, 1000))
	second := f.postEntry(t, feb, debit(rent.ID, 300), credit(cash.ID, 300))

	entries, err := f.entryUC.ListEntriesByAccount(ctx, usecase.ListEntriesByAccountInput{AccountID: cash.ID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID, "newest first")
	assert.Equal(t, first.ID, entries[1].ID)

	entries, err = f.entryUC.ListEntriesByAccount(ctx, usecase.ListEntriesByAccountInput{AccountID: rent.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
