package repository

import (
	"sync"

	"transaction-processor/internal/domain"
)

// lockRegistry allocates one mutex per account id on first use. The
// get-or-create step is itself guarded so two first-time requests for the
// same account can never end up holding distinct locks.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockRegistry() domain.LockRegistry {
	return &lockRegistry{
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *lockRegistry) Acquire(accountID string) func() {
	r.mu.Lock()
	lock, ok := r.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[accountID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
