package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"transaction-processor/internal/domain"
	"transaction-processor/internal/errors"
)

type TransactionService struct {
	accountRepo     domain.AccountRepository
	transactionRepo domain.IdempotencyRepository
	locks           domain.LockRegistry
	logger          *slog.Logger
}

func NewTransactionService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.IdempotencyRepository,
	locks domain.LockRegistry,
	logger *slog.Logger,
) *TransactionService {
	return &TransactionService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		locks:           locks,
		logger:          logger,
	}
}

// ProcessTransaction applies a debit or credit to a single account.
// Requests sharing an idempotency key produce exactly one balance change
// and all receive the originally stored transaction; requests against the
// same account are serialized by that account's lock.
func (s *TransactionService) ProcessTransaction(req *domain.TransactionRequest) (*domain.Transaction, error) {
	s.logger.Info("Processing transaction",
		"idempotency_key", req.IdempotencyKey,
		"account_id", req.AccountID,
		"amount", req.Amount,
		"type", req.Type)

	// Fast path: replays never touch the balance store or any lock.
	// Stored transactions are immutable, so reading without the account
	// lock is safe.
	if existing, ok := s.transactionRepo.Lookup(req.IdempotencyKey); ok {
		return s.replay(req, existing)
	}

	if !s.accountRepo.Exists(req.AccountID) {
		s.logger.Warn("Account not found",
			"account_id", req.AccountID,
			"idempotency_key", req.IdempotencyKey)
		return nil, errors.ErrAccountNotFound
	}

	release := s.locks.Acquire(req.AccountID)
	defer release()

	// A concurrent duplicate may have been recorded while this request
	// waited for the lock; re-check before mutating anything.
	if existing, ok := s.transactionRepo.Lookup(req.IdempotencyKey); ok {
		return s.replay(req, existing)
	}

	// Re-read under the lock: the balance seen before acquisition may be
	// stale by now.
	currentBalance, err := s.accountRepo.GetBalance(req.AccountID)
	if err != nil {
		return nil, err
	}

	newBalance, err := s.computeBalance(req, currentBalance)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SetBalance(req.AccountID, newBalance); err != nil {
		s.logger.Error("Failed to persist balance", "account_id", req.AccountID, "error", err)
		return nil, err
	}

	transaction := &domain.Transaction{
		ID:        uuid.New(),
		AccountID: req.AccountID,
		Status:    domain.StatusProcessed,
		Balance:   newBalance,
		Timestamp: time.Now().UTC(),
	}
	s.transactionRepo.Record(req.IdempotencyKey, transaction)

	s.logger.Info("Transaction processed successfully",
		"transaction_id", transaction.ID,
		"account_id", req.AccountID,
		"new_balance", newBalance,
		"idempotency_key", req.IdempotencyKey)

	return transaction, nil
}

// replay returns a previously stored transaction verbatim, rejecting
// attempts to reuse a key against a different account.
func (s *TransactionService) replay(req *domain.TransactionRequest, existing *domain.Transaction) (*domain.Transaction, error) {
	if existing.AccountID != req.AccountID {
		s.logger.Warn("Idempotency key replayed against a different account",
			"idempotency_key", req.IdempotencyKey,
			"recorded_account_id", existing.AccountID,
			"requested_account_id", req.AccountID)
		return nil, errors.ErrIdempotencyKeyConflict
	}

	s.logger.Info("Returning existing transaction for idempotency key",
		"idempotency_key", req.IdempotencyKey,
		"transaction_id", existing.ID)
	return existing, nil
}

func (s *TransactionService) computeBalance(req *domain.TransactionRequest, currentBalance decimal.Decimal) (decimal.Decimal, error) {
	magnitude := req.Amount.Abs()

	switch req.Type {
	case domain.TransactionTypeDebit:
		if currentBalance.LessThan(magnitude) {
			s.logger.Warn("Insufficient funds for debit",
				"account_id", req.AccountID,
				"current_balance", currentBalance,
				"requested_amount", magnitude,
				"idempotency_key", req.IdempotencyKey)
			return decimal.Zero, errors.ErrInsufficientFunds
		}
		return currentBalance.Sub(magnitude), nil

	case domain.TransactionTypeCredit:
		return currentBalance.Add(magnitude), nil

	default:
		// The validation layer should have rejected this already.
		s.logger.Error("Invalid transaction type",
			"type", req.Type,
			"idempotency_key", req.IdempotencyKey)
		return decimal.Zero, errors.ErrInvalidTransactionType
	}
}
