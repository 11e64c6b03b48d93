// Package memory provides an in-memory implementation of the store
// contract. It backs unit and scenario tests that need a full ledger
// store without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akozlov/bookkeep/internal/domain"
	"github.com/akozlov/bookkeep/internal/usecase"
)

// Store holds accounts, entries and outbox events behind one mutex.
// Accounts, Entries and Outbox return views satisfying the respective
// usecase repository interfaces; Store itself satisfies
// usecase.TransactionManager.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	entries  map[string]*domain.Entry
	outbox   map[string]*domain.OutboxEvent

	// strayLines holds lines injected outside any balanced entry,
	// simulating store-level corruption in consistency tests.
	strayLines []strayLine
}

type strayLine struct {
	line domain.Line
	date time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		entries:  make(map[string]*domain.Entry),
		outbox:   make(map[string]*domain.OutboxEvent),
	}
}

// Accounts returns the account repository view.
func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{s: s}
}

// Entries returns the entry repository view.
func (s *Store) Entries() *EntryRepository {
	return &EntryRepository{s: s}
}

// Outbox returns the outbox repository view.
func (s *Store) Outbox() *OutboxRepository {
	return &OutboxRepository{s: s}
}

// Begin returns a no-op transaction; the store mutates under its own
// lock per call.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	return noopTx{}, nil
}

type noopTx struct{}

func (noopTx) Commit(ctx context.Context) error   { return nil }
func (noopTx) Rollback(ctx context.Context) error { return nil }

// InjectLine records a raw line outside any balanced entry, simulating
// a store inconsistency. Consistency tests use it to prove the trial
// balance detects broken invariants.
func (s *Store) InjectLine(line domain.Line, date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.strayLines = append(s.strayLines, strayLine{line: line, date: date})
}

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	s *Store
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if existing.Name == account.Name {
			return domain.ErrDuplicateAccount
		}
	}

	cp := *account
	r.s.accounts[account.ID] = &cp

	return nil
}

// CreateTx creates a new account, ignoring the transaction handle.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.Create(ctx, account)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	account, ok := r.s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	cp := *account

	return &cp, nil
}

// GetByName retrieves an account by its unique name.
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, account := range r.s.accounts {
		if account.Name == name {
			cp := *account

			return &cp, nil
		}
	}

	return nil, domain.ErrAccountNotFound
}

// List returns the whole chart of accounts ordered by name.
func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.s.accounts))
	for _, account := range r.s.accounts {
		cp := *account
		accounts = append(accounts, &cp)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})

	return accounts, nil
}

// Truncate removes all accounts. Test fixtures only.
func (r *AccountRepository) Truncate(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.accounts = make(map[string]*domain.Account)

	return nil
}

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	s *Store
}

// Create persists an entry and all of its lines.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *entry
	cp.Lines = append([]domain.Line(nil), entry.Lines...)
	r.s.entries[entry.ID] = &cp

	return nil
}

// GetByID retrieves an entry with its lines.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entry, ok := r.s.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}

	cp := *entry
	cp.Lines = append([]domain.Line(nil), entry.Lines...)

	return &cp, nil
}

// ListByAccount retrieves entries touching an account, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*domain.Entry, 0)

	for _, entry := range r.s.entries {
		for _, line := range entry.Lines {
			if line.AccountID == accountID {
				cp := *entry
				cp.Lines = append([]domain.Line(nil), entry.Lines...)
				matched = append(matched, &cp)

				break
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}

		return matched[i].ID > matched[j].ID
	})

	if offset >= len(matched) {
		return []*domain.Entry{}, nil
	}

	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	return matched, nil
}

// SumBySide sums line amounts in minor units for one account and side,
// over entries dated up to and including upTo. Injected stray lines
// count too, exactly as corrupt rows would in a real store.
func (r *EntryRepository) SumBySide(ctx context.Context, accountID string, side domain.Side, upTo time.Time) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int64

	for _, entry := range r.s.entries {
		if entry.Date.After(upTo) {
			continue
		}

		for _, line := range entry.Lines {
			if line.AccountID == accountID && line.Side == side {
				total += line.Amount.Amount()
			}
		}
	}

	for _, stray := range r.s.strayLines {
		if stray.date.After(upTo) {
			continue
		}

		if stray.line.AccountID == accountID && stray.line.Side == side {
			total += stray.line.Amount.Amount()
		}
	}

	return total, nil
}

// Truncate removes all entries, lines and stray lines. Test fixtures
// only.
func (r *EntryRepository) Truncate(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.entries = make(map[string]*domain.Entry)
	r.s.strayLines = nil

	return nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	s *Store
}

// Create creates a new outbox event.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *event
	r.s.outbox[event.ID] = &cp

	return nil
}

// GetUnpublished retrieves unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	events := make([]*domain.OutboxEvent, 0)
	for _, event := range r.s.outbox {
		if !event.Published {
			cp := *event
			events = append(events, &cp)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})

	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}

	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event, ok := r.s.outbox[id]
	if !ok {
		return nil
	}

	event.Published = true
	event.PublishedAt = &publishedAt

	return nil
}

// DeletePublished deletes published events older than the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, event := range r.s.outbox {
		if event.Published && event.CreatedAt.Before(before) {
			delete(r.s.outbox, id)
		}
	}

	return nil
}
