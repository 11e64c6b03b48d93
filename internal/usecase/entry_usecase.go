package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/akozlov/bookkeep/internal/domain"
)

// EntryUseCase handles entry posting and retrieval.
type EntryUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	cache       Cache // optional, may be nil
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
) *EntryUseCase {
	return &EntryUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
	}
}

// PostLineInput is one debit or credit of an entry being posted.
type PostLineInput struct {
	AccountID  string
	Side       domain.Side
	MinorUnits int64
	Currency   string
}

// PostEntryInput represents input for posting an entry.
type PostEntryInput struct {
	Date  time.Time
	Lines []PostLineInput
}

// PostEntry validates and persists a balanced entry with all of its
// lines and an entry.posted outbox event in a single transaction.
// An entry that fails the balance invariant is rejected before any
// persistence attempt. Store failures propagate unchanged; there is no
// retry here.
func (uc *EntryUseCase) PostEntry(ctx context.Context, input PostEntryInput) (*domain.Entry, error) {
	now := time.Now().UTC()

	date := input.Date
	if date.IsZero() {
		date = now
	}

	entryID := uc.idGen.Generate()

	lines := make([]domain.Line, 0, len(input.Lines))
	for _, li := range input.Lines {
		amount, err := domain.NewMoney(li.MinorUnits, li.Currency)
		if err != nil {
			return nil, err
		}

		lines = append(lines, domain.Line{
			ID:        uc.idGen.Generate(),
			EntryID:   entryID,
			AccountID: li.AccountID,
			Side:      li.Side,
			Amount:    amount,
		})
	}

	entry := &domain.Entry{
		ID:        entryID,
		Date:      date,
		Lines:     lines,
		CreatedAt: now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.checkAccounts(ctx, entry); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     domain.EventTypeEntryPosted,
		Payload: map[string]any{
			"entry_id":     entry.ID,
			"date":         entry.Date.Format(time.RFC3339),
			"currency":     entry.CurrencyCode(),
			"line_count":   len(entry.Lines),
			"debit_total":  entry.DebitTotal(),
			"credit_total": entry.CreditTotal(),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateBalances(ctx, entry)

	return entry, nil
}

// checkAccounts verifies every referenced account exists and carries the
// line's currency.
func (uc *EntryUseCase) checkAccounts(ctx context.Context, entry *domain.Entry) error {
	seen := make(map[string]*domain.Account)

	for _, line := range entry.Lines {
		account, ok := seen[line.AccountID]
		if !ok {
			var err error

			account, err = uc.accountRepo.GetByID(ctx, line.AccountID)
			if err != nil {
				return err
			}

			seen[line.AccountID] = account
		}

		if account.Currency != line.Amount.CurrencyCode() {
			return fmt.Errorf("%w: account %s holds %s, line is %s",
				domain.ErrLineAccountMatch, account.ID, account.Currency, line.Amount.CurrencyCode())
		}
	}

	return nil
}

// invalidateBalances drops cached balances for accounts the entry
// touched. Best effort: a failed delete only means a stale read until
// the TTL expires.
func (uc *EntryUseCase) invalidateBalances(ctx context.Context, entry *domain.Entry) {
	if uc.cache == nil {
		return
	}

	seen := make(map[string]bool)
	for _, line := range entry.Lines {
		if seen[line.AccountID] {
			continue
		}
		seen[line.AccountID] = true

		_ = uc.cache.Delete(ctx, balanceCacheKey(line.AccountID))
	}
}

// GetEntry retrieves an entry with its lines by ID.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntriesByAccountInput represents input for listing entries.
type ListEntriesByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListEntriesByAccount lists entries touching an account.
func (uc *EntryUseCase) ListEntriesByAccount(ctx context.Context, input ListEntriesByAccountInput) ([]*domain.Entry, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}

	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}

	return uc.entryRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}
