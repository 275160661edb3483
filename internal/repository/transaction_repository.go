package repository

import (
	"log/slog"
	"sync"

	"transaction-processor/internal/domain"
)

// transactionRepository is the in-memory idempotency ledger: one immutable
// transaction per idempotency key, retained for the life of the process.
type transactionRepository struct {
	mu     sync.RWMutex
	byKey  map[string]*domain.Transaction
	logger *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger) domain.IdempotencyRepository {
	return &transactionRepository{
		byKey:  make(map[string]*domain.Transaction),
		logger: logger,
	}
}

func (r *transactionRepository) Lookup(idempotencyKey string) (*domain.Transaction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.byKey[idempotencyKey]
	return tx, ok
}

func (r *transactionRepository) Record(idempotencyKey string, tx *domain.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The engine only records under the account lock after a miss, so a
	// key is never written twice. First write wins regardless.
	if _, ok := r.byKey[idempotencyKey]; ok {
		r.logger.Warn("Idempotency key already recorded", "idempotency_key", idempotencyKey)
		return
	}
	r.byKey[idempotencyKey] = tx
}

func (r *transactionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byKey)
}
