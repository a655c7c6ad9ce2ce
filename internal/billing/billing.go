// Package billing authorises card payments against a server-issued payment
// intent. Card tokenisation and 3-D Secure stay with the payment provider;
// callers hand over a payment method token and the intent's client secret.
package billing

import (
	"context"
	"strings"

	"github.com/dukerupert/adorn/internal/domain"
)

// Authorizer confirms a card payment for an existing payment intent.
type Authorizer interface {
	// ConfirmCard charges the payment method against the intent.
	// Declines are returned as a PaymentError wrapping *DeclineError.
	// Required for checkout.
	ConfirmCard(ctx context.Context, params ConfirmCardParams) (*Authorization, error)
}

// ConfirmCardParams contains parameters for confirming a card payment.
type ConfirmCardParams struct {
	// IntentID is the provider's payment intent ID (pi_...).
	// Optional when ClientSecret is set; it is derived from the secret.
	IntentID string

	// ClientSecret authorises this one confirmation. It is never persisted
	// or logged.
	ClientSecret string

	// PaymentMethod is the tokenised card (pm_...).
	PaymentMethod string

	BillingDetails BillingDetails

	// IdempotencyKey prevents double charges when a confirm is retried.
	IdempotencyKey string
}

// BillingDetails is the cardholder information sent with the confirmation.
type BillingDetails struct {
	Name    string
	Email   string
	Phone   string
	Address domain.ShippingAddress
}

// Authorization is the outcome of a successful confirmation.
type Authorization struct {
	IntentID      string
	Status        string
	AmountMinor   int64
	Currency      string
	PaymentMethod string
}

// Payment intent statuses the checkout cares about.
const (
	StatusSucceeded      = "succeeded"
	StatusRequiresAction = "requires_action"
	StatusProcessing     = "processing"
	StatusCanceled       = "canceled"
)

// intentIDFromSecret returns the intent ID embedded in a client secret
// ("pi_123_secret_abc" → "pi_123").
func intentIDFromSecret(secret string) (string, bool) {
	id, _, ok := strings.Cut(secret, "_secret_")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// resolveIntentID checks that the intent ID and client secret agree and
// returns the ID to confirm.
func resolveIntentID(op string, params ConfirmCardParams) (string, error) {
	fromSecret, ok := intentIDFromSecret(params.ClientSecret)
	switch {
	case params.ClientSecret == "":
		return "", domain.Invalid(op, "client secret is required")
	case !ok:
		return "", domain.Invalid(op, "malformed client secret")
	case params.IntentID != "" && params.IntentID != fromSecret:
		return "", domain.Invalid(op, "client secret does not belong to this payment intent")
	}
	return fromSecret, nil
}
