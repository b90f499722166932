// Package errors provides custom error types for Kopilka.
// All ledger and dialogue errors should use AppError so that user-visible
// messages stay consistent and internal details never leak into chat output.
package errors

// AppError represents a structured application error with an error code,
// human-readable message, and optional internal error.
type AppError struct {
	Code     string
	Message  string
	Internal error
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		Internal: sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid input"}
	ErrStorage      = &AppError{Code: "STORAGE_ERROR", Message: "A storage error occurred"}
)

// Category errors.
var (
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found"}
	ErrCategoryExists   = &AppError{Code: "CATEGORY_EXISTS", Message: "A category with this name already exists"}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found"}
)
