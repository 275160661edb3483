package repository

import (
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"transaction-processor/internal/domain"
	"transaction-processor/internal/errors"
)

// accountRepository is the in-memory balance store. Its mutex protects the
// map structure only; serializing read-compute-write sequences on a single
// account is the caller's responsibility via the lock registry.
type accountRepository struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	logger   *slog.Logger
}

// NewAccountRepository seeds the store with the given initial balances.
func NewAccountRepository(seed map[string]decimal.Decimal, logger *slog.Logger) domain.AccountRepository {
	balances := make(map[string]decimal.Decimal, len(seed))
	for id, balance := range seed {
		balances[id] = balance
	}
	return &accountRepository{
		balances: balances,
		logger:   logger,
	}
}

func (r *accountRepository) GetBalance(accountID string) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	balance, ok := r.balances[accountID]
	if !ok {
		r.logger.Warn("Account not found", "account_id", accountID)
		return decimal.Zero, errors.ErrAccountNotFound
	}
	return balance, nil
}

func (r *accountRepository) SetBalance(accountID string, newBalance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.balances[accountID]; !ok {
		r.logger.Warn("No account found to update", "account_id", accountID)
		return errors.ErrAccountNotFound
	}
	r.balances[accountID] = newBalance

	r.logger.Debug("Account balance updated", "account_id", accountID, "new_balance", newBalance)
	return nil
}

func (r *accountRepository) Exists(accountID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.balances[accountID]
	return ok
}

func (r *accountRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.balances)
}
