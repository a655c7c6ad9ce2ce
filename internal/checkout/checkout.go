// Package checkout runs the payment flow for the current cart: validate the
// customer, create a payment intent, authorise the card, confirm with the
// backend and clear the cart. A failed attempt leaves the cart untouched and
// returns to collecting customer info.
package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/adorn/internal/billing"
	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/events"
	"github.com/dukerupert/adorn/internal/service"
	"github.com/dukerupert/adorn/internal/shipping"
	"github.com/dukerupert/adorn/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Step is the position of the checkout state machine.
type Step string

const (
	StepCollectingInfo Step = "collecting_info"
	StepIntentCreated  Step = "intent_created"
	StepAuthorizing    Step = "authorizing"
	StepConfirming     Step = "confirming"
	StepDone           Step = "done"
)

// cleanupTimeout bounds the best-effort calls made after a failure.
const cleanupTimeout = 10 * time.Second

var (
	ErrInProgress    = domain.Conflict("checkout.submit", "A checkout is already in progress")
	ErrAmountChanged = &domain.Error{Code: domain.EUPSTREAM, Message: "The payment amount does not match your order total"}
)

// Cart is the part of the persisted cart checkout needs.
type Cart interface {
	Items() []domain.CartItem
	Clear(ctx context.Context) error
}

// Payments is the backend side of the payment lifecycle.
type Payments interface {
	CreateIntent(ctx context.Context, req service.IntentRequest) (*domain.PaymentIntent, error)
	Confirm(ctx context.Context, intentID string, req service.ConfirmRequest) (*domain.Order, error)
	Cancel(ctx context.Context, intentID string) error
}

// Deps are the collaborators of a Checkout. Cart, Payments and Authorizer are
// required.
type Deps struct {
	Cart       Cart
	Payments   Payments
	Authorizer billing.Authorizer
	Fees       shipping.Provider
	Events     events.Publisher
	Metrics    *telemetry.Metrics
	Sentry     *telemetry.Sentry
	Logger     zerolog.Logger
	Currency   string
}

// Result is a completed checkout.
type Result struct {
	Order          *domain.Order `json:"order"`
	Quote          domain.Quote  `json:"quote"`
	IntentID       string        `json:"paymentIntentId"`
	IdempotencyKey string        `json:"idempotencyKey"`
}

// Checkout orchestrates one customer's payment flow. Only one Submit runs at
// a time.
type Checkout struct {
	cart       Cart
	payments   Payments
	authorizer billing.Authorizer
	fees       shipping.Provider
	events     events.Publisher
	metrics    *telemetry.Metrics
	sentry     *telemetry.Sentry
	logger     zerolog.Logger
	currency   string

	newKey func() string
	now    func() time.Time

	mu      sync.Mutex
	step    Step
	running bool
}

func New(d Deps) (*Checkout, error) {
	switch {
	case d.Cart == nil:
		return nil, errors.New("checkout: cart is required")
	case d.Payments == nil:
		return nil, errors.New("checkout: payment service is required")
	case d.Authorizer == nil:
		return nil, errors.New("checkout: card authorizer is required")
	}

	c := &Checkout{
		cart:       d.Cart,
		payments:   d.Payments,
		authorizer: d.Authorizer,
		fees:       d.Fees,
		events:     d.Events,
		metrics:    d.Metrics,
		sentry:     d.Sentry,
		logger:     d.Logger.With().Str("component", "checkout").Logger(),
		currency:   strings.ToLower(d.Currency),
		newKey:     func() string { return uuid.New().String() },
		now:        time.Now,
		step:       StepCollectingInfo,
	}
	if c.fees == nil {
		c.fees = shipping.NewDefaultFeeTable()
	}
	if c.events == nil {
		c.events = events.Noop{}
	}
	if c.currency == "" {
		c.currency = "ngn"
	}
	return c, nil
}

// Step reports where the current or last attempt is.
func (c *Checkout) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Checkout) setStep(s Step) {
	c.mu.Lock()
	c.step = s
	c.mu.Unlock()
	c.metrics.CheckoutStep(string(s))
}

// begin claims the checkout for one Submit. A finished checkout starts over.
func (c *Checkout) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	c.step = StepCollectingInfo
	return true
}

func (c *Checkout) end() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// Validate checks the customer info form. Every field is required and the
// email must look like one.
func Validate(info domain.CustomerInfo) error {
	return service.Validate("checkout.validate", info)
}

// Regions lists the delivery regions and their fees.
func (c *Checkout) Regions() []shipping.Region {
	return c.fees.Regions()
}

// Quote prices the current cart for delivery to region.
func (c *Checkout) Quote(ctx context.Context, region string) (domain.Quote, error) {
	return c.quote(ctx, c.cart.Items(), region)
}

func (c *Checkout) quote(ctx context.Context, items []domain.CartItem, region string) (domain.Quote, error) {
	fee, err := c.fees.Fee(ctx, region)
	if err != nil {
		return domain.Quote{}, err
	}

	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	return domain.Quote{
		Region:        strings.TrimSpace(region),
		SubtotalMinor: subtotal,
		DeliveryMinor: fee,
		TotalMinor:    subtotal + fee,
		Currency:      c.currency,
	}, nil
}

// attempt is the state of one Submit. The client secret never leaves Submit.
type attempt struct {
	key      string
	quote    domain.Quote
	intentID string
	logger   zerolog.Logger
}

// Submit pays for the cart. paymentMethod is the card token produced by the
// payment provider's SDK. On success the cart is cleared and the placed order
// is returned; on failure the cart is untouched, the intent is cancelled and
// the step returns to StepCollectingInfo.
func (c *Checkout) Submit(ctx context.Context, info domain.CustomerInfo, paymentMethod string) (*Result, error) {
	const op = "checkout.submit"

	if !c.begin() {
		return nil, ErrInProgress
	}
	defer c.end()

	if err := billing.Ready(c.authorizer); err != nil {
		return nil, err
	}
	if err := Validate(info); err != nil {
		return nil, err
	}
	if strings.TrimSpace(paymentMethod) == "" {
		return nil, domain.NewValidationError(op, "paymentMethod", "Enter your card details")
	}
	items := c.cart.Items()
	if len(items) == 0 {
		return nil, domain.NewValidationError(op, "cart", domain.ErrCartEmpty.Message)
	}
	quote, err := c.quote(ctx, items, info.State)
	if err != nil {
		return nil, err
	}

	a := &attempt{key: c.newKey(), quote: quote}
	a.logger = c.logger.With().Str("idempotency_key", a.key).Int64("total", quote.TotalMinor).Logger()
	a.logger.Info().Int("items", len(items)).Str("region", quote.Region).Msg("checkout started")
	c.metrics.CheckoutStep("started")
	c.publish(ctx, a, events.TypeCheckoutStarted, "", "")

	payItems := service.PaymentItemsFromCart(items)

	intent, err := c.payments.CreateIntent(ctx, service.IntentRequest{
		AmountMinor:    quote.TotalMinor,
		DeliveryMinor:  quote.DeliveryMinor,
		Currency:       quote.Currency,
		Customer:       info,
		Items:          payItems,
		IdempotencyKey: a.key,
	})
	if err != nil {
		return nil, c.fail(ctx, a, StepCollectingInfo, err)
	}
	a.intentID = intent.ID
	c.setStep(StepIntentCreated)

	if intent.AmountMinor != 0 && intent.AmountMinor != quote.TotalMinor {
		a.logger.Error().Int64("intent_amount", intent.AmountMinor).Msg("intent amount differs from quote")
		return nil, c.fail(ctx, a, StepIntentCreated, ErrAmountChanged)
	}

	c.setStep(StepAuthorizing)
	_, err = c.authorizer.ConfirmCard(ctx, billing.ConfirmCardParams{
		IntentID:      intent.ID,
		ClientSecret:  intent.ClientSecret,
		PaymentMethod: paymentMethod,
		BillingDetails: billing.BillingDetails{
			Name:    info.FullName,
			Email:   info.Email,
			Phone:   info.Mobile,
			Address: info.ShippingAddress(),
		},
		IdempotencyKey: a.key + ":authorize",
	})
	if err != nil {
		return nil, c.fail(ctx, a, StepAuthorizing, authorizeError(err))
	}

	c.setStep(StepConfirming)
	order, err := c.payments.Confirm(ctx, intent.ID, service.ConfirmRequest{
		Customer:        info,
		ShippingAddress: info.ShippingAddress(),
		Items:           payItems,
		IdempotencyKey:  a.key,
	})
	if err != nil {
		return nil, c.fail(ctx, a, StepConfirming, err)
	}

	// The order exists from here on; a failed clear must not report failure.
	if err := c.cart.Clear(ctx); err != nil {
		a.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to clear cart after order")
	}

	c.mu.Lock()
	c.step = StepDone
	c.mu.Unlock()
	c.metrics.CheckoutCompleted(quote.TotalMinor)
	c.publish(ctx, a, events.TypeCheckoutCompleted, order.ID, "")

	a.logger.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("payment_intent_id", intent.ID).
		Msg("checkout completed")

	return &Result{
		Order:          order,
		Quote:          quote,
		IntentID:       intent.ID,
		IdempotencyKey: a.key,
	}, nil
}

// authorizeError keeps domain errors from the authorizer and turns anything
// else into a PaymentError.
func authorizeError(err error) error {
	var de *domain.Error
	if errors.As(err, &de) || domain.IsValidationError(err) {
		return err
	}
	return domain.WrapError(err, domain.EPAYMENT, "checkout.authorize", "Your card could not be authorised. Please try again.")
}

// fail rolls an attempt back: cancel the intent so it is never reused, return
// to collecting info, then report.
func (c *Checkout) fail(ctx context.Context, a *attempt, stage Step, err error) error {
	code := errorCode(err)

	if a.intentID != "" {
		c.cancelIntent(ctx, a)
	}

	c.mu.Lock()
	c.step = StepCollectingInfo
	c.mu.Unlock()

	c.metrics.CheckoutFailure(string(stage), code)
	c.publish(ctx, a, events.TypeCheckoutFailed, "", code)

	a.logger.Warn().
		Err(err).
		Str("stage", string(stage)).
		Str("code", code).
		Str("payment_intent_id", a.intentID).
		Msg("checkout failed")

	if reportable(err) {
		c.sentry.CaptureError(ctx, err, map[string]string{
			"checkout.stage": string(stage),
			"error.code":     code,
		})
	}
	return err
}

func (c *Checkout) cancelIntent(ctx context.Context, a *attempt) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := c.payments.Cancel(ctx, a.intentID); err != nil {
		a.logger.Warn().Err(err).Str("payment_intent_id", a.intentID).Msg("failed to cancel payment intent")
	}
}

// publish sends an event. Publish failures are logged and never fail checkout.
func (c *Checkout) publish(ctx context.Context, a *attempt, typ, orderID, code string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	err := c.events.Publish(ctx, events.Event{
		Type:           typ,
		OccurredAt:     c.now().UTC(),
		IdempotencyKey: a.key,
		OrderID:        orderID,
		AmountMinor:    a.quote.TotalMinor,
		ErrorCode:      code,
	})
	c.metrics.EventPublished(typ, err)
	if err != nil {
		a.logger.Warn().Err(err).Str("event", typ).Msg("failed to publish checkout event")
	}
}

func errorCode(err error) string {
	if domain.IsValidationError(err) {
		return domain.EINVALID
	}
	return domain.ErrorCode(err)
}

// reportable reports whether err is worth an error report. Bad input and card
// declines are the customer's to fix.
func reportable(err error) bool {
	if domain.IsValidationError(err) {
		return false
	}
	switch domain.ErrorCode(err) {
	case domain.EPAYMENT, domain.EINVALID:
		return false
	}
	return true
}
