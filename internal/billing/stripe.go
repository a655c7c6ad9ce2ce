package billing

import (
	"context"
	"errors"
	"net/http"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeAuthorizer implements Authorizer using Stripe PaymentIntents.
type StripeAuthorizer struct {
	client paymentintent.Client
	logger zerolog.Logger
}

// NewStripeAuthorizer creates a Stripe-backed authorizer.
func NewStripeAuthorizer(cfg StripeConfig, logger zerolog.Logger) (*StripeAuthorizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.timeout()},
		MaxNetworkRetries: stripe.Int64(cfg.retries()),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	return &StripeAuthorizer{
		client: paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.APIKey,
		},
		logger: logger.With().Str("component", "stripe").Logger(),
	}, nil
}

// ConfirmCard confirms the intent with the given payment method.
func (s *StripeAuthorizer) ConfirmCard(ctx context.Context, params ConfirmCardParams) (*Authorization, error) {
	const op = "billing.confirm_card"

	intentID, err := resolveIntentID(op, params)
	if err != nil {
		return nil, err
	}
	if params.PaymentMethod == "" {
		return nil, domain.NewValidationError(op, "paymentMethod", "Enter your card details")
	}

	confirm := &stripe.PaymentIntentConfirmParams{
		Params:        stripe.Params{Context: ctx},
		PaymentMethod: stripe.String(params.PaymentMethod),
	}
	// A publishable key may only confirm an intent it holds the secret for.
	confirm.AddExtra("client_secret", params.ClientSecret)
	if params.BillingDetails.Email != "" {
		confirm.ReceiptEmail = stripe.String(params.BillingDetails.Email)
	}
	if addr := params.BillingDetails.Address; addr.Address != "" {
		confirm.Shipping = &stripe.ShippingDetailsParams{
			Name:  stripe.String(params.BillingDetails.Name),
			Phone: stripe.String(params.BillingDetails.Phone),
			Address: &stripe.AddressParams{
				Line1:   stripe.String(addr.Address),
				City:    stripe.String(addr.City),
				State:   stripe.String(addr.State),
				Country: stripe.String(countryOrDefault(addr.Country)),
			},
		}
	}
	if params.IdempotencyKey != "" {
		confirm.SetIdempotencyKey(params.IdempotencyKey)
	}

	pi, err := s.client.Confirm(intentID, confirm)
	if err != nil {
		mapped := mapStripeError(op, err)
		s.logger.Warn().
			Err(err).
			Str("payment_intent_id", intentID).
			Str("code", domain.ErrorCode(mapped)).
			Msg("card confirmation failed")
		return nil, mapped
	}

	auth := &Authorization{
		IntentID:    pi.ID,
		Status:      string(pi.Status),
		AmountMinor: pi.Amount,
		Currency:    string(pi.Currency),
	}
	if pi.PaymentMethod != nil {
		auth.PaymentMethod = pi.PaymentMethod.ID
	}

	if auth.Status != StatusSucceeded {
		s.logger.Info().
			Str("payment_intent_id", pi.ID).
			Str("status", auth.Status).
			Msg("card confirmation incomplete")
		return auth, incompleteError(op, pi)
	}

	s.logger.Info().
		Str("payment_intent_id", pi.ID).
		Int64("amount", pi.Amount).
		Msg("card confirmed")
	return auth, nil
}

// incompleteError describes an intent that did not reach succeeded.
func incompleteError(op string, pi *stripe.PaymentIntent) error {
	if pi.LastPaymentError != nil {
		return paymentError(op, declineFrom(pi.LastPaymentError))
	}

	msg := "Your payment could not be completed."
	switch string(pi.Status) {
	case StatusRequiresAction:
		msg = "Your bank requires additional authentication for this payment."
	case StatusProcessing:
		msg = "Your payment is still processing."
	case StatusCanceled:
		msg = "This payment was canceled."
	}
	return domain.WrapError(ErrPaymentIncomplete, domain.EPAYMENT, op, msg)
}

// mapStripeError turns SDK errors into domain errors. Card errors and failed
// authentication become PaymentErrors; anything without a Stripe error body
// never reached Stripe.
func mapStripeError(op string, err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return domain.Network(err, op)
	}

	switch {
	case se.Type == stripe.ErrorTypeCard,
		string(se.Code) == "payment_intent_authentication_failure":
		return paymentError(op, declineFrom(se))
	case se.HTTPStatusCode == http.StatusTooManyRequests:
		return domain.WrapError(se, domain.ERATELIMIT, op, "Too many payment attempts. Please wait and try again.")
	case se.HTTPStatusCode == http.StatusUnauthorized:
		return domain.WrapError(se, domain.EINTERNAL, op, "payment provider rejected the API key")
	default:
		return domain.WrapError(se, domain.EUPSTREAM, op, "The payment provider could not process this request.")
	}
}

func declineFrom(se *stripe.Error) *DeclineError {
	return &DeclineError{
		Message:       se.Msg,
		Code:          string(se.Code),
		DeclineCode:   string(se.DeclineCode),
		RequestID:     se.RequestID,
		OriginalError: se,
	}
}

func countryOrDefault(country string) string {
	if country == "" {
		return "NG"
	}
	return country
}
