package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"transaction-processor/internal/config"
	"transaction-processor/internal/domain"
	"transaction-processor/internal/errors"
	"transaction-processor/internal/service"
)

var idempotencyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

const maxDescriptionLength = 255

type TransactionHandler struct {
	transactionService *service.TransactionService
	cfg                *config.Config
}

func NewTransactionHandler(transactionService *service.TransactionService, cfg *config.Config) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		cfg:                cfg,
	}
}

type TransactionRequest struct {
	IdempotencyKey string `json:"idempotencyKey"`
	AccountID      string `json:"accountId"`
	Amount         string `json:"amount"`
	Type           string `json:"type"`
	Description    string `json:"description"`
}

type TransactionResponse struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Balance       string `json:"balance"`
	Timestamp     string `json:"timestamp"`
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	engineReq, appErr := h.validate(&req)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	transaction, err := h.transactionService.ProcessTransaction(engineReq)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TransactionResponse{
		TransactionID: transaction.ID.String(),
		Status:        transaction.Status,
		Balance:       transaction.Balance.StringFixed(2),
		Timestamp:     transaction.Timestamp.Format(time.RFC3339Nano),
	})
}

// validate enforces every boundary rule so the engine only ever sees
// well-formed requests.
func (h *TransactionHandler) validate(req *TransactionRequest) (*domain.TransactionRequest, *errors.AppError) {
	if !idempotencyKeyPattern.MatchString(req.IdempotencyKey) {
		return nil, errors.NewAppError(errors.InvalidInput, "idempotencyKey must be 1-64 characters of alphanumerics, underscore or hyphen")
	}

	if !service.ValidAccountID(req.AccountID) {
		return nil, errors.ErrInvalidAccountID
	}

	txType := domain.TransactionType(req.Type)
	if txType != domain.TransactionTypeDebit && txType != domain.TransactionTypeCredit {
		return nil, errors.NewAppErrorf(errors.InvalidTransactionType, "type must be %q or %q", domain.TransactionTypeDebit, domain.TransactionTypeCredit)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error())
	}
	if amount.IsZero() {
		return nil, errors.NewAppError(errors.InvalidAmount, "amount must be nonzero")
	}
	if amount.Exponent() < -2 {
		return nil, errors.NewAppError(errors.InvalidAmount, "amount must have at most 2 decimal places")
	}
	if txType == domain.TransactionTypeDebit && amount.IsPositive() {
		return nil, errors.NewAppError(errors.InvalidAmount, "debit amount must be negative")
	}
	if txType == domain.TransactionTypeCredit && amount.IsNegative() {
		return nil, errors.NewAppError(errors.InvalidAmount, "credit amount must be positive")
	}

	magnitude := amount.Abs()
	if magnitude.LessThan(h.cfg.MinTransactionAmount) {
		return nil, errors.NewAppErrorf(errors.InvalidAmount, "amount magnitude must be at least %s", h.cfg.MinTransactionAmount)
	}
	if magnitude.GreaterThan(h.cfg.MaxTransactionAmount) {
		return nil, errors.NewAppErrorf(errors.InvalidAmount, "amount magnitude must not exceed %s", h.cfg.MaxTransactionAmount)
	}

	if req.Description == "" || len(req.Description) > maxDescriptionLength {
		return nil, errors.NewAppErrorf(errors.InvalidInput, "description must be 1-%d characters", maxDescriptionLength)
	}

	return &domain.TransactionRequest{
		IdempotencyKey: req.IdempotencyKey,
		AccountID:      req.AccountID,
		Amount:         amount,
		Type:           txType,
		Description:    req.Description,
	}, nil
}
