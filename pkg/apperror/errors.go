package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error types reported to API clients alongside the HTTP status
const (
	TypeValidation        = "validation_error"
	TypeConfiguration     = "configuration_error"
	TypeInsufficientStock = "insufficient_stock"
	TypeImmutableField    = "immutable_field"
	TypeLockedResource    = "locked_resource"
	TypeDuplicateInvoice  = "duplicate_invoice"
	TypeNotFound          = "not_found"
	TypeUnauthorized      = "unauthorized"
	TypeForbidden         = "forbidden"
	TypeInternal          = "internal_error"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Details interface{}  `json:"details,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Type: TypeNotFound, Message: "Resource not found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Type: TypeUnauthorized, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Type: TypeForbidden, Message: "Forbidden"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Type: TypeInternal, Message: "Internal server error"}
)

// NewAppError creates a new application error
func NewAppError(code int, errType, message string) *AppError {
	return &AppError{
		Code:    code,
		Type:    errType,
		Message: message,
	}
}

// NewValidationError creates a validation error for missing or malformed input
// and invalid foreign references.
func NewValidationError(message string, fieldErrors ...FieldError) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    TypeValidation,
		Message: message,
		Errors:  fieldErrors,
	}
}

// NewConfigurationError reports tenant configuration that blocks order math,
// e.g. a missing or inactive VAT tax type.
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Code:    http.StatusPreconditionFailed,
		Type:    TypeConfiguration,
		Message: message,
	}
}

// NewImmutableFieldError reports an attempt to change a field that is fixed after creation
func NewImmutableFieldError(field string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Type:    TypeImmutableField,
		Message: field + " cannot be changed once the record is created",
		Errors:  []FieldError{{Field: field, Message: "immutable"}},
	}
}

// NewLockedResourceError reports an edit on a record that no longer accepts changes
func NewLockedResourceError(message string) *AppError {
	return &AppError{
		Code:    http.StatusLocked,
		Type:    TypeLockedResource,
		Message: message,
	}
}

// NewDuplicateInvoiceError reports an invoice that already exists for an order
// or an invoice number that is already taken
func NewDuplicateInvoiceError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    TypeDuplicateInvoice,
		Message: message,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    TypeNotFound,
		Message: resource + " not found",
	}
}

// InsufficientStockError is returned when demand for an item exceeds its stock
type InsufficientStockError struct {
	ItemID    uuid.UUID
	ItemName  string
	Requested decimal.Decimal
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.ItemName
	if name == "" {
		name = e.ItemID.String()
	}
	return fmt.Sprintf("Insufficient stock for %s: requested %s, available %d", name, e.Requested.String(), e.Available)
}

// AppError converts the stock error to its API representation
func (e *InsufficientStockError) AppError() *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Type:    TypeInsufficientStock,
		Message: e.Error(),
		Details: map[string]interface{}{
			"item_id":   e.ItemID,
			"item_name": e.ItemName,
			"requested": e.Requested.String(),
			"available": e.Available,
		},
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsType reports whether err carries the given error type
func IsType(err error, errType string) bool {
	if err == nil {
		return false
	}
	return GetAppError(err).Type == errType
}

// GetAppError converts an error to AppError if possible.
// Errors outside the taxonomy become a generic internal error so that
// persistence details never reach the client.
func GetAppError(err error) *AppError {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return stockErr.AppError()
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer
}
