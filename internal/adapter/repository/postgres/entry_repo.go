package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akozlov/bookkeep/internal/domain"
	"github.com/akozlov/bookkeep/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const insertEntrySQL = `
INSERT INTO entries (id, entry_date, created_at)
VALUES ($1, $2, $3)`

const insertLineSQL = `
INSERT INTO entry_lines (id, entry_id, account_id, side, amount, currency)
VALUES ($1, $2, $3, $4, $5, $6)`

// Create persists the entry and all of its lines within tx. The commit
// is the caller's; nothing lands unless the whole transaction does.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	if _, err := pgxTx.Exec(ctx, insertEntrySQL, entry.ID, entry.Date, entry.CreatedAt); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, line := range entry.Lines {
		batch.Queue(insertLineSQL,
			line.ID, line.EntryID, line.AccountID, string(line.Side),
			line.Amount.Amount(), line.Amount.CurrencyCode())
	}

	return pgxTx.SendBatch(ctx, batch).Close()
}

// GetByID retrieves an entry with its lines.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	var entry domain.Entry

	err := r.pool.QueryRow(ctx,
		"SELECT id, entry_date, created_at FROM entries WHERE id = $1", id).
		Scan(&entry.ID, &entry.Date, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	lines, err := r.loadLines(ctx, []string{entry.ID})
	if err != nil {
		return nil, err
	}

	entry.Lines = lines[entry.ID]

	return &entry, nil
}

// ListByAccount retrieves entries touching an account, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
SELECT DISTINCT e.id, e.entry_date, e.created_at
FROM entries e
JOIN entry_lines l ON l.entry_id = e.id
WHERE l.account_id = $1
ORDER BY e.entry_date DESC, e.id DESC
LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.Entry, 0)
	ids := make([]string, 0)

	for rows.Next() {
		var entry domain.Entry
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.CreatedAt); err != nil {
			return nil, err
		}

		entries = append(entries, &entry)
		ids = append(ids, entry.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return entries, nil
	}

	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		entry.Lines = lines[entry.ID]
	}

	return entries, nil
}

// SumBySide sums line amounts in minor units for one account and side,
// over entries dated up to and including upTo.
func (r *EntryRepository) SumBySide(ctx context.Context, accountID string, side domain.Side, upTo time.Time) (int64, error) {
	var total int64

	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(l.amount), 0)
FROM entry_lines l
JOIN entries e ON e.id = l.entry_id
WHERE l.account_id = $1 AND l.side = $2 AND e.entry_date <= $3`,
		accountID, string(side), upTo).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// Truncate removes all entries and their lines. Test fixtures only.
func (r *EntryRepository) Truncate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE entries CASCADE")

	return err
}

func (r *EntryRepository) loadLines(ctx context.Context, entryIDs []string) (map[string][]domain.Line, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, entry_id, account_id, side, amount, currency
FROM entry_lines
WHERE entry_id = ANY($1)
ORDER BY id`, entryIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make(map[string][]domain.Line)

	for rows.Next() {
		var (
			line     domain.Line
			side     string
			amount   int64
			currency string
		)

		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &side, &amount, &currency); err != nil {
			return nil, err
		}

		money, err := domain.NewMoney(amount, currency)
		if err != nil {
			return nil, err
		}

		line.Side = domain.Side(side)
		line.Amount = money

		lines[line.EntryID] = append(lines[line.EntryID], line)
	}

	return lines, rows.Err()
}
