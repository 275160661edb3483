package repository

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"transaction-processor/internal/domain"
)

// Store bundles the three in-memory stores behind one handle so services
// and tests get a consistent, isolated set per construction.
type Store struct {
	accounts     domain.AccountRepository
	transactions domain.IdempotencyRepository
	locks        domain.LockRegistry
}

// NewStore builds a fresh store seeded with the given account balances.
func NewStore(seed map[string]decimal.Decimal, logger *slog.Logger) *Store {
	return &Store{
		accounts:     NewAccountRepository(seed, logger),
		transactions: NewTransactionRepository(logger),
		locks:        NewLockRegistry(),
	}
}

// Account returns the balance store.
func (s *Store) Account() domain.AccountRepository {
	return s.accounts
}

// Transaction returns the idempotency ledger.
func (s *Store) Transaction() domain.IdempotencyRepository {
	return s.transactions
}

// Locks returns the per-account lock registry.
func (s *Store) Locks() domain.LockRegistry {
	return s.locks
}
