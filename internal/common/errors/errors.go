// Package errors provides standardized error handling for the assistant
// workers. Business failures (missing entity, product not found, duplicate
// phone) are non-retryable data; infrastructure failures are retryable.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeProductNotFound   ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound     ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeDuplicatePhone    ErrorCode = "DUPLICATE_PHONE"
	ErrCodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"

	ErrCodeIntentUnknown    ErrorCode = "INTENT_UNKNOWN"
	ErrCodeInvalidTaskInput ErrorCode = "INVALID_TASK_INPUT"

	ErrCodeContextStoreFailed     ErrorCode = "CONTEXT_STORE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeAuditIndexFailed       ErrorCode = "AUDIT_INDEX_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// --- Constructors ---

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProductNotFoundError creates a non-retryable lookup error.
func NewProductNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProductNotFound,
		Message:   "Product not found",
		Details:   fmt.Sprintf("product: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderNotFoundError creates a non-retryable lookup error.
func NewOrderNotFoundError(orderID int) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderNotFound,
		Message:   "Order not found",
		Details:   fmt.Sprintf("orderId: %d", orderID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicatePhoneError creates a non-retryable uniqueness error.
func NewDuplicatePhoneError(phone string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicatePhone,
		Message:   "Customer with this phone already exists",
		Details:   fmt.Sprintf("phone: %s", phone),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientStockError creates a non-retryable stock error.
func NewInsufficientStockError(product string, available, requested int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientStock,
		Message:   "Insufficient stock",
		Details:   fmt.Sprintf("product: %s, available: %d, requested: %d", product, available, requested),
		Retryable: false,
		Metadata: map[string]interface{}{
			"available": available,
			"requested": requested,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTaskInputError creates a non-retryable worker input error.
func NewInvalidTaskInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTaskInput,
		Message:   "Task input failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextStoreFailedError creates a retryable session store error.
func NewContextStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextStoreFailed,
		Message:   "Conversation context store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeContextStoreFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeAuditIndexFailed:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "STOCK") || strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "DUPLICATE"):
		return "BUSINESS"
	case strings.Contains(codeStr, "INTENT") || strings.Contains(codeStr, "CONTEXT"):
		return "ASSISTANT"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "AUDIT"):
		return "DELIVERY"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
