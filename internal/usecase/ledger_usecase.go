package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/akozlov/bookkeep/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when the trial balance is not zero.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: trial balance is not zero")
)

// LedgerUseCase is the stateless engine for balance and trial-balance
// computation. It holds no state of its own and only reads through the
// store, so it is safe to invoke concurrently.
type LedgerUseCase struct {
	accountRepo     AccountRepository
	entryRepo       EntryRepository
	cache           Cache // optional, may be nil
	defaultCurrency string
}

// NewLedgerUseCase creates a new LedgerUseCase. defaultCurrency is the
// currency of the zero trial balance reported for an empty chart.
func NewLedgerUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	cache Cache,
	defaultCurrency string,
) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo:     accountRepo,
		entryRepo:       entryRepo,
		cache:           cache,
		defaultCurrency: defaultCurrency,
	}
}

// Balance computes one account's balance from all lines dated up to and
// including asOf, signed per the account's normal polarity. A zero asOf
// means "now"; only that case consults the cache.
func (uc *LedgerUseCase) Balance(ctx context.Context, accountID string, asOf time.Time) (domain.Money, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return domain.Money{}, err
	}

	current := asOf.IsZero()
	if current {
		asOf = time.Now().UTC()

		if uc.cache != nil {
			if v, err := uc.cache.Get(ctx, balanceCacheKey(accountID)); err == nil {
				if minor, err := strconv.ParseInt(v, 10, 64); err == nil {
					return domain.NewMoney(minor, account.Currency)
				}
			}
		}
	}

	balance, err := uc.computeBalance(ctx, account, asOf)
	if err != nil {
		return domain.Money{}, err
	}

	if current && uc.cache != nil {
		_ = uc.cache.Set(ctx, balanceCacheKey(accountID),
			strconv.FormatInt(balance.Amount(), 10), BalanceCacheTTL)
	}

	return balance, nil
}

func (uc *LedgerUseCase) computeBalance(ctx context.Context, account *domain.Account, asOf time.Time) (domain.Money, error) {
	natural, err := uc.naturalBalance(ctx, account, asOf)
	if err != nil {
		return domain.Money{}, err
	}

	if account.Polarity() == domain.CreditNormal {
		return natural.Neg(), nil
	}

	return natural, nil
}

// naturalBalance is debits minus credits regardless of polarity. The
// natural balances of all accounts sum to zero exactly when every
// persisted entry balances.
func (uc *LedgerUseCase) naturalBalance(ctx context.Context, account *domain.Account, asOf time.Time) (domain.Money, error) {
	debits, err := uc.entryRepo.SumBySide(ctx, account.ID, domain.SideDebit, asOf)
	if err != nil {
		return domain.Money{}, err
	}

	credits, err := uc.entryRepo.SumBySide(ctx, account.ID, domain.SideCredit, asOf)
	if err != nil {
		return domain.Money{}, err
	}

	return domain.NewMoney(debits-credits, account.Currency)
}

// TrialBalance folds every account's natural balance (debits minus
// credits) as of asOf into a single Money. Zero asOf means "now". The
// result is zero whenever every persisted entry individually balances;
// this is the primary audit check after any batch of postings. The
// fold bypasses the cache so the audit never trusts a stale read.
func (uc *LedgerUseCase) TrialBalance(ctx context.Context, asOf time.Time) (domain.Money, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	accounts, err := uc.accountRepo.List(ctx)
	if err != nil {
		return domain.Money{}, err
	}

	if len(accounts) == 0 {
		return domain.NewMoney(0, uc.defaultCurrency)
	}

	total, err := domain.NewMoney(0, accounts[0].Currency)
	if err != nil {
		return domain.Money{}, err
	}

	for _, account := range accounts {
		balance, err := uc.naturalBalance(ctx, account, asOf)
		if err != nil {
			return domain.Money{}, err
		}

		// Add fails with ErrCurrencyMismatch on a multi-currency
		// chart; consolidation across currencies is out of scope.
		total, err = total.Add(balance)
		if err != nil {
			return domain.Money{}, err
		}
	}

	return total, nil
}

// CheckConsistency verifies the trial balance is zero.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	total, err := uc.TrialBalance(ctx, time.Time{})
	if err != nil {
		return false, err
	}

	if !total.IsZero() {
		return false, ErrInconsistentLedger
	}

	return true, nil
}
