package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds every balance-mutating database
	// transaction so a stuck commit cannot hold row locks indefinitely.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long replayed responses are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// AccountCacheTTL is how long account reads are served from cache.
	AccountCacheTTL = 30 * time.Second
)
