package usecase

import "time"

const (
	// DefaultPageSize is applied when a list request omits a limit.
	DefaultPageSize = 20
	// MaxPageSize caps list request limits.
	MaxPageSize = 100

	// BalanceCacheTTL bounds staleness of cached current balances.
	BalanceCacheTTL = 30 * time.Second

	balanceCachePrefix = "balance:"
)

func balanceCacheKey(accountID string) string {
	return balanceCachePrefix + accountID
}
