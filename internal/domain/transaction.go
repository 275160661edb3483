package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeCredit TransactionType = "credit"
)

// StatusProcessed is the only terminal status: a transaction either
// completes fully or never touches state.
const StatusProcessed = "processed"

// TransactionRequest is the engine's input. Amount carries whatever sign
// the client sent; the engine works on its magnitude and the Type tag.
type TransactionRequest struct {
	IdempotencyKey string
	AccountID      string
	Amount         decimal.Decimal
	Type           TransactionType
	Description    string
}

// Transaction is the immutable outcome of a processed request. The same
// value is returned verbatim for every replay of its idempotency key,
// original timestamp included.
type Transaction struct {
	ID        uuid.UUID       `json:"transaction_id"`
	AccountID string          `json:"account_id"`
	Status    string          `json:"status"`
	Balance   decimal.Decimal `json:"balance"`
	Timestamp time.Time       `json:"timestamp"`
}

// IdempotencyRepository maps idempotency keys to the transaction they
// produced. Entries are written once and never mutated.
type IdempotencyRepository interface {
	Lookup(idempotencyKey string) (*Transaction, bool)
	Record(idempotencyKey string, tx *Transaction)
	Count() int
}
