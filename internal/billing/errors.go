package billing

import (
	"errors"
	"fmt"

	"github.com/dukerupert/adorn/internal/domain"
)

var (
	// ErrInvalidAPIKey is returned when the Stripe API key is invalid or missing.
	ErrInvalidAPIKey = errors.New("billing: invalid or missing API key")

	// ErrPaymentIncomplete is returned when a confirmation leaves the intent
	// in any state other than succeeded.
	ErrPaymentIncomplete = errors.New("billing: payment not completed")
)

// DeclineError is a card or authentication failure reported by the payment
// provider.
type DeclineError struct {
	Message       string // Human-readable error message
	Code          string // Provider error code (e.g., "card_declined")
	DeclineCode   string // Card decline reason (if applicable)
	RequestID     string // Provider request ID for debugging
	OriginalError error  // Original error from the SDK
}

func (e *DeclineError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (code: %s)", e.Message, e.Code)
	}
	return fmt.Sprintf("stripe: %s", e.Message)
}

func (e *DeclineError) Unwrap() error {
	return e.OriginalError
}

// IsDeclined returns true if error is due to card decline.
func (e *DeclineError) IsDeclined() bool {
	return e.Code == "card_declined" || e.DeclineCode != ""
}

// IsTemporary returns true if error is likely transient and retryable.
func (e *DeclineError) IsTemporary() bool {
	return e.Code == "rate_limit" || e.Code == "api_connection_error" ||
		e.DeclineCode == "try_again_later" || e.DeclineCode == "processing_error"
}

// paymentError wraps a decline as an EPAYMENT domain error. The provider's
// message is written for cardholders and is shown as is.
func paymentError(op string, d *DeclineError) error {
	msg := d.Message
	if msg == "" {
		msg = "Your card was declined."
	}
	return domain.WrapError(d, domain.EPAYMENT, op, msg)
}

// AsDecline extracts the provider decline from a payment error.
func AsDecline(err error) (*DeclineError, bool) {
	var d *DeclineError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
