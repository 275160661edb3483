package service

import (
	"log/slog"
	"regexp"

	"transaction-processor/internal/domain"
	"transaction-processor/internal/errors"
	"transaction-processor/internal/repository"
)

var accountIDPattern = regexp.MustCompile(`^acc_[0-9]+$`)

// ValidAccountID reports whether id matches the acc_<digits> format.
func ValidAccountID(id string) bool {
	return accountIDPattern.MatchString(id)
}

type AccountService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewAccountService(store *repository.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// GetAccount returns the account's current balance. The read takes no
// account lock: a point-in-time balance is allowed to race with writers.
func (s *AccountService) GetAccount(accountID string) (*domain.Account, error) {
	s.logger.Info("Getting account", "account_id", accountID)

	if !ValidAccountID(accountID) {
		return nil, errors.ErrInvalidAccountID
	}

	balance, err := s.store.Account().GetBalance(accountID)
	if err != nil {
		return nil, err
	}

	return &domain.Account{
		ID:      accountID,
		Balance: balance,
	}, nil
}

// Counts reports the number of known accounts and processed transactions,
// used by the health surface.
func (s *AccountService) Counts() (accounts, transactions int) {
	return s.store.Account().Count(), s.store.Transaction().Count()
}
