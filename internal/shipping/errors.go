package shipping

import "fmt"

// ============================================================================
// SHIPPING ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.
// The handler layer maps these to HTTP status codes.

const (
	codeInvalid = "invalid"
)

// ============================================================================
// SHIPPING ERROR TYPE
// ============================================================================

// ShippingError represents a shipping-specific error with a code and message.
type ShippingError struct {
	Code    string
	Message string
}

func (e *ShippingError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *ShippingError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *ShippingError) ErrorMessage() string {
	return e.Message
}

func newShippingError(code, message string) *ShippingError {
	return &ShippingError{Code: code, Message: message}
}

// ============================================================================
// SHIPPING DOMAIN ERRORS
// ============================================================================

var (
	// ErrEmptyFeeTable is returned when a fee table has no entries at all.
	ErrEmptyFeeTable = newShippingError(codeInvalid, "Delivery fee table is empty")

	// ErrNoFallback is returned when a table has no Others entry.
	ErrNoFallback = newShippingError(codeInvalid, "Delivery fee table needs an Others entry")
)

// ErrInvalidFeeEntry creates an error for an unparseable DELIVERY_FEES entry.
func ErrInvalidFeeEntry(entry string, err error) error {
	return &ShippingError{
		Code:    codeInvalid,
		Message: fmt.Sprintf("Invalid delivery fee entry %q: %v", entry, err),
	}
}
