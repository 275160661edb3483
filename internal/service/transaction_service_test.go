package service

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transaction-processor/internal/domain"
	"transaction-processor/internal/errors"
	"transaction-processor/internal/repository"
)

func newTestService(t *testing.T) (*TransactionService, *repository.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewStore(map[string]decimal.Decimal{
		"acc_001": decimal.RequireFromString("1000.00"),
		"acc_002": decimal.RequireFromString("500.00"),
		"acc_003": decimal.RequireFromString("0.00"),
	}, logger)

	svc := NewTransactionService(store.Account(), store.Transaction(), store.Locks(), logger)
	return svc, store
}

func balanceOf(t *testing.T, store *repository.Store, accountID string) decimal.Decimal {
	t.Helper()

	balance, err := store.Account().GetBalance(accountID)
	require.NoError(t, err)
	return balance
}

func TestCreditIncreasesBalance(t *testing.T) {
	svc, store := newTestService(t)

	tx, err := svc.ProcessTransaction(&domain.TransactionRequest{
		IdempotencyKey: "txn_credit_1",
		AccountID:      "acc_001",
		Amount:         decimal.RequireFromString("100.50"),
		Type:           domain.TransactionTypeCredit,
		Description:    "Test credit",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, tx.Status)
	assert.Equal(t, "acc_001", tx.AccountID)
	assert.True(t, tx.Balance.Equal(decimal.RequireFromString("1100.50")))
	assert.False(t, tx.Timestamp.IsZero())
	assert.True(t, balanceOf(t, store, "acc_001").Equal(decimal.RequireFromString("1100.50")))
}

func TestDebitDecreasesBalance(t *testing.T) {
	svc, store := newTestService(t)

	tx, err := svc.ProcessTransaction(&domain.TransactionRequest{
		IdempotencyKey: "txn_debit_1",
		AccountID:      "acc_001",
		Amount:         decimal.RequireFromString("-200.00"),
		Type:           domain.TransactionTypeDebit,
		Description:    "Test debit",
	})

	require.NoError(t, err)
	assert.True(t, tx.Balance.Equal(decimal.RequireFromString("800.00")))
	assert.True(t, balanceOf(t, store, "acc_001").Equal(decimal.RequireFromString("800.00")))
}

func TestRepeatedKeyReturnsStoredResultOnce(t *testing.T) {
	svc, store := newTestService(t)

	req := &domain.TransactionRequest{
		IdempotencyKey: "txn_replay",
		AccountID:      "acc_001",
		Amount:         decimal.RequireFromString("100.50"),
		Type:           domain.TransactionTypeCredit,
		Description:    "Replayed credit",
	}

	first, err := svc.ProcessTransaction(req)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		replay, err := svc.ProcessTransaction(req)
		require.NoError(t, err)
		assert.Equal(t, first.ID, replay.ID)
		assert.True(t, first.Balance.Equal(replay.Balance))
		assert.Equal(t, first.Timestamp, replay.Timestamp)
	}

	// One net balance change, one ledger entry.
	assert.True(t, balanceOf(t, store, "acc_001").Equal(decimal.RequireFromString("1100.50")))
	assert.Equal(t, 1, store.Transaction().Count())
}

func TestInsufficientFundsLeavesBalanceUntouched(t *testing.T) {
	svc, store := newTestService(t)

	tx, err := svc.ProcessTransaction(&domain.TransactionRequest{
		IdempotencyKey: "txn_insufficient",
		AccountID:      "acc_003",
		Amount:         decimal.RequireFromString("-100.00"),
		Type:           domain.TransactionTypeDebit,
		Description:    "Should fail",
	})

	require.Nil(t, tx)
	assert.Equal(t, errors.ErrInsufficientFunds, err)
	assert.True(t, balanceOf(t, store, "acc_003").Equal(decimal.RequireFromString("0.00")))
	assert.Equal(t, 0, store.Transaction().Count())
}

func TestUnknownAccountRejected(t *testing.T) {
	svc, store := newTestService(t)

	tx, err := svc.ProcessTransaction(&domain.TransactionRequest{
		IdempotencyKey: "txn_invalid",
		AccountID:      "acc_999",
		Amount:         decimal.RequireFromString("50.00"),
		Type:           domain.TransactionTypeCredit,
		Description:    "Invalid account",
	})

	require.Nil(t, tx)
	assert.Equal(t, errors.ErrAccountNotFound, err)
	assert.Equal(t, 0, store.Transaction().Count())
}

func TestInvalidTransactionTypeRejected(t *testing.T) {
	svc, store := newTestService(t)

	tx, err := svc.ProcessTransaction(&domain.TransactionRequest{
		IdempotencyKey: "txn_bad_type",
		AccountID:      "acc_001",
		Amount:         decimal.RequireFromString("50.00"),
		Type:           domain.TransactionType("transfer"),
		Description:    "Bad type",
	})

	require.Nil(t, tx)
	assert.Equal(t, errors.ErrInvalidTransactionType, err)
	assert.True(t, balanceOf(t, store, "acc_001").Equal(decimal.RequireFromString("1000.00")))
}

func TestKeyReplayAgainstDifferentAccountConflicts(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ProcessTransaction(&domain.TransactionRequest{
		IdempotencyKey: "txn_shared",
		AccountID:      "acc_001",
		Amount:         decimal.RequireFromString("10.00"),
		Type:           domain.TransactionTypeCredit,
		Description:    "Original",
	})
	require.NoError(t, err)

	tx, err := svc.ProcessTransaction(&domain.TransactionRequest{
		IdempotencyKey: "txn_shared",
		AccountID:      "acc_002",
		Amount:         decimal.RequireFromString("10.00"),
		Type:           domain.TransactionTypeCredit,
		Description:    "Same key, other account",
	})

	require.Nil(t, tx)
	assert.Equal(t, errors.ErrIdempotencyKeyConflict, err)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	svc, store := newTestService(t)

	// acc_002 starts at 500.00; five concurrent 200.00 debits can only
	// ever succeed twice.
	const workers = 5
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.ProcessTransaction(&domain.TransactionRequest{
				IdempotencyKey: "txn_drain_" + string(rune('a'+n)),
				AccountID:      "acc_002",
				Amount:         decimal.RequireFromString("-200.00"),
				Type:           domain.TransactionTypeDebit,
				Description:    "Concurrent debit",
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, errors.ErrInsufficientFunds, err)
			failed++
		}
	}

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 3, failed)
	assert.True(t, balanceOf(t, store, "acc_002").Equal(decimal.RequireFromString("100.00")))
}

func TestConcurrentCreditsAllApply(t *testing.T) {
	svc, store := newTestService(t)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.ProcessTransaction(&domain.TransactionRequest{
				IdempotencyKey: "txn_credit_" + string(rune('a'+n%26)) + string(rune('a'+n/26)),
				AccountID:      "acc_003",
				Amount:         decimal.RequireFromString("1.00"),
				Type:           domain.TransactionTypeCredit,
				Description:    "Concurrent credit",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// No lost updates: every credit lands exactly once.
	assert.True(t, balanceOf(t, store, "acc_003").Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, workers, store.Transaction().Count())
}

func TestConcurrentDuplicateSubmissionsMutateOnce(t *testing.T) {
	svc, store := newTestService(t)

	const workers = 10
	transactions := make(chan *domain.Transaction, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := svc.ProcessTransaction(&domain.TransactionRequest{
				IdempotencyKey: "txn_duplicate_burst",
				AccountID:      "acc_001",
				Amount:         decimal.RequireFromString("100.00"),
				Type:           domain.TransactionTypeCredit,
				Description:    "Duplicate burst",
			})
			assert.NoError(t, err)
			transactions <- tx
		}()
	}
	wg.Wait()
	close(transactions)

	var first *domain.Transaction
	for tx := range transactions {
		if first == nil {
			first = tx
			continue
		}
		assert.Equal(t, first.ID, tx.ID)
		assert.Equal(t, first.Timestamp, tx.Timestamp)
	}

	assert.True(t, balanceOf(t, store, "acc_001").Equal(decimal.RequireFromString("1100.00")))
	assert.Equal(t, 1, store.Transaction().Count())
}
