package domain

import (
	"github.com/shopspring/decimal"
)

type Account struct {
	ID      string          `json:"account_id"`
	Balance decimal.Decimal `json:"balance"`
}

// AccountRepository holds account balances. It performs no per-account
// serialization of its own: callers must hold the account's lock (see
// LockRegistry) around any read-compute-write sequence.
type AccountRepository interface {
	GetBalance(accountID string) (decimal.Decimal, error)
	SetBalance(accountID string, newBalance decimal.Decimal) error
	Exists(accountID string) bool
	Count() int
}

// LockRegistry hands out exactly one lock per account id, creating it
// atomically on first use. Acquire blocks until the lock is free and
// returns the release function.
type LockRegistry interface {
	Acquire(accountID string) (release func())
}
