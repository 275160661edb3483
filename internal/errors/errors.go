package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidInput           ErrorCode = "invalid_input"
	InvalidAmount          ErrorCode = "invalid_amount"
	AccountNotFound        ErrorCode = "account_not_found"
	InsufficientFunds      ErrorCode = "insufficient_funds"
	InvalidTransactionType ErrorCode = "invalid_transaction_type"
	IdempotencyKeyConflict ErrorCode = "idempotency_key_conflict"
	InternalError          ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps an error code to the transport status the boundary
// reports for it.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case AccountNotFound:
		return http.StatusNotFound
	case IdempotencyKeyConflict:
		return http.StatusConflict
	case InvalidInput, InvalidAmount, InsufficientFunds, InvalidTransactionType:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound        = NewAppError(AccountNotFound, "account not found")
	ErrInsufficientFunds      = NewAppError(InsufficientFunds, "insufficient funds")
	ErrInvalidTransactionType = NewAppError(InvalidTransactionType, "invalid transaction type")
	ErrIdempotencyKeyConflict = NewAppError(IdempotencyKeyConflict, "idempotency key already used for a different account")
	ErrInvalidAccountID       = NewAppError(InvalidInput, "invalid account id format")
	ErrInvalidAmount          = NewAppError(InvalidAmount, "invalid amount")
)
