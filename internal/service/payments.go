package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/domain"
)

// PaymentItem is a cart line as sent to the payment endpoints. Amounts on
// these endpoints are integer minor units.
type PaymentItem struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price" validate:"gte=0"`
	Quantity   int    `json:"quantity" validate:"gte=1"`
}

// PaymentItemsFromCart converts cart lines for a payment request.
func PaymentItemsFromCart(items []domain.CartItem) []PaymentItem {
	out := make([]PaymentItem, len(items))
	for i, it := range items {
		out[i] = PaymentItem{ID: it.ID, Name: it.Name, PriceMinor: it.PriceMinor, Quantity: it.Quantity}
	}
	return out
}

// IntentRequest creates a payment intent. IdempotencyKey is sent in the body
// and the Idempotency-Key header so a retried request never creates a second
// intent for the same attempt.
type IntentRequest struct {
	AmountMinor    int64               `json:"amount" validate:"gt=0"`
	DeliveryMinor  int64               `json:"deliveryFee" validate:"gte=0"`
	Currency       string              `json:"currency" validate:"required,len=3"`
	Customer       domain.CustomerInfo `json:"customerInfo"`
	Items          []PaymentItem       `json:"items" validate:"required,min=1,dive"`
	IdempotencyKey string              `json:"idempotencyKey" validate:"required"`
}

// ConfirmRequest asks the backend to verify the authorised intent and create
// the order.
type ConfirmRequest struct {
	Customer        domain.CustomerInfo    `json:"customerInfo"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	Items           []PaymentItem          `json:"items" validate:"required,min=1,dive"`
	IdempotencyKey  string                 `json:"idempotencyKey,omitempty"`
}

type intentWire struct {
	ID           string `json:"id"`
	IntentID     string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

func (w intentWire) toDomain() domain.PaymentIntent {
	return domain.PaymentIntent{
		ID:           firstNonEmpty(w.ID, w.IntentID),
		ClientSecret: w.ClientSecret,
		AmountMinor:  w.Amount,
		Currency:     w.Currency,
		Status:       w.Status,
	}
}

// decodeConfirmed reads the confirm payload, which is either the order itself
// or {"order": ...}.
func decodeConfirmed(raw json.RawMessage) (orderWire, error) {
	var wrapped struct {
		Order *orderWire `json:"order"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return orderWire{}, err
	}
	if wrapped.Order != nil {
		return *wrapped.Order, checkShape(*wrapped.Order)
	}

	var o orderWire
	if err := json.Unmarshal(raw, &o); err != nil {
		return orderWire{}, err
	}
	return o, checkShape(o)
}

// PaymentService drives the backend side of the payment lifecycle.
type PaymentService interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*domain.PaymentIntent, error)
	Confirm(ctx context.Context, intentID string, req ConfirmRequest) (*domain.Order, error)
	Status(ctx context.Context, intentID string) (*domain.PaymentIntent, error)
	Cancel(ctx context.Context, intentID string) error
}

type paymentService struct {
	api Requester
}

func NewPaymentService(api Requester) (PaymentService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &paymentService{api: api}, nil
}

func (s *paymentService) CreateIntent(ctx context.Context, req IntentRequest) (*domain.PaymentIntent, error) {
	const op = "payment.create_intent"
	if err := Validate(op, req); err != nil {
		return nil, err
	}

	w, err := call[intentWire](ctx, s.api, op, http.MethodPost, "/payments/create-payment-intent", req,
		apiclient.WithIdempotencyKey(req.IdempotencyKey))
	if err != nil {
		return nil, err
	}
	pi := w.toDomain()
	if pi.ID == "" || pi.ClientSecret == "" {
		return nil, domain.Errorf(domain.EUPSTREAM, op, "unexpected response shape")
	}
	if pi.AmountMinor == 0 {
		pi.AmountMinor = req.AmountMinor
	}
	if pi.Currency == "" {
		pi.Currency = req.Currency
	}
	return &pi, nil
}

func (s *paymentService) Confirm(ctx context.Context, intentID string, req ConfirmRequest) (*domain.Order, error) {
	const op = "payment.confirm"
	if err := requireID(op, intentID); err != nil {
		return nil, err
	}
	if err := Validate(op, req); err != nil {
		return nil, err
	}

	var opts []apiclient.RequestOption
	if req.IdempotencyKey != "" {
		opts = append(opts, apiclient.WithIdempotencyKey(req.IdempotencyKey+":confirm"))
	}

	raw, err := call[json.RawMessage](ctx, s.api, op, http.MethodPost, "/payments/confirm/"+apiclient.PathEscape(intentID), req, opts...)
	if err != nil {
		return nil, err
	}

	ow, err := decodeConfirmed(raw)
	if err != nil {
		return nil, errShape(op, err)
	}
	o := ow.toDomain()
	if o.PaymentIntentID == "" {
		o.PaymentIntentID = intentID
	}
	return &o, nil
}

func (s *paymentService) Status(ctx context.Context, intentID string) (*domain.PaymentIntent, error) {
	const op = "payment.status"
	if err := requireID(op, intentID); err != nil {
		return nil, err
	}
	w, err := get[intentWire](ctx, s.api, op, "/payments/status/"+apiclient.PathEscape(intentID))
	if err != nil {
		return nil, err
	}
	pi := w.toDomain()
	if pi.ID == "" {
		pi.ID = intentID
	}
	return &pi, nil
}

func (s *paymentService) Cancel(ctx context.Context, intentID string) error {
	const op = "payment.cancel"
	if err := requireID(op, intentID); err != nil {
		return err
	}
	return exec(ctx, s.api, op, http.MethodPost, "/payments/cancel/"+apiclient.PathEscape(intentID), nil)
}
