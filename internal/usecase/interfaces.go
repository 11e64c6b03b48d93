package usecase

import (
	"context"
	"time"

	"github.com/akozlov/bookkeep/internal/domain"
)

// AccountRepository defines data access for the chart of accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByName(ctx context.Context, name string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	// Truncate is a test-only reset hook, never used in production flows.
	Truncate(ctx context.Context) error
}

// EntryRepository defines data access for entries and their lines.
type EntryRepository interface {
	// Create persists the entry and all of its lines within tx.
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	// SumBySide sums line amounts in minor units for one account and
	// side, over entries dated up to and including upTo.
	SumBySide(ctx context.Context, accountID string, side domain.Side, upTo time.Time) (int64, error)
	// Truncate is a test-only reset hook, never used in production flows.
	Truncate(ctx context.Context) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
