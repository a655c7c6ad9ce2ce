package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/adorn/internal/billing"
	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/events"
	"github.com/dukerupert/adorn/internal/service"
	"github.com/dukerupert/adorn/internal/shipping"
	"github.com/dukerupert/adorn/internal/storage"
	"github.com/dukerupert/adorn/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockPayments is a testify mock of the backend payment endpoints.
type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) CreateIntent(ctx context.Context, req service.IntentRequest) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, req)
	intent, _ := args.Get(0).(*domain.PaymentIntent)
	return intent, args.Error(1)
}

func (m *mockPayments) Confirm(ctx context.Context, intentID string, req service.ConfirmRequest) (*domain.Order, error) {
	args := m.Called(ctx, intentID, req)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockPayments) Cancel(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

// recordingPublisher keeps published events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func validInfo() domain.CustomerInfo {
	return domain.CustomerInfo{
		Email:    "ada@example.com",
		Mobile:   "08030000000",
		FullName: "Ada Obi",
		Address:  "1 Marina",
		City:     "Ikeja",
		State:    "Zone",
	}
}

type fixture struct {
	checkout   *Checkout
	cart       *store.Cart
	payments   *mockPayments
	authorizer *billing.MockAuthorizer
	publisher  *recordingPublisher
}

// newFixture builds a checkout over a cart holding {1000×1, 2000×2} and a fee
// table that charges 500 for every region.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	cart, err := store.LoadCart(ctx, storage.NewMemoryStorage(), store.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NoError(t, cart.AddItem(ctx, domain.Product{ID: "p1", Name: "Ring", PriceMinor: 1000}))
	require.NoError(t, cart.AddItem(ctx, domain.Product{ID: "p2", Name: "Bangle", PriceMinor: 2000}))
	require.NoError(t, cart.AddItem(ctx, domain.Product{ID: "p2", Name: "Bangle", PriceMinor: 2000}))

	fees, err := shipping.NewFeeTable([]shipping.Region{{Name: shipping.OthersRegion, FeeMinor: 500}})
	require.NoError(t, err)

	f := &fixture{
		cart:       cart,
		payments:   &mockPayments{},
		authorizer: billing.NewMockAuthorizer(),
		publisher:  &recordingPublisher{},
	}
	f.checkout, err = New(Deps{
		Cart:       cart,
		Payments:   f.payments,
		Authorizer: f.authorizer,
		Fees:       fees,
		Events:     f.publisher,
		Logger:     zerolog.Nop(),
		Currency:   "NGN",
	})
	require.NoError(t, err)
	f.checkout.newKey = func() string { return "key-1" }
	return f
}

func intentFor(amount int64) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ID:           "pi_1",
		ClientSecret: "pi_1_secret_s",
		AmountMinor:  amount,
		Currency:     "ngn",
	}
}

func TestQuote(t *testing.T) {
	f := newFixture(t)

	q, err := f.checkout.Quote(context.Background(), "Zone")

	require.NoError(t, err)
	assert.Equal(t, int64(5000), q.SubtotalMinor)
	assert.Equal(t, int64(500), q.DeliveryMinor)
	assert.Equal(t, int64(5500), q.TotalMinor)
	assert.Equal(t, "ngn", q.Currency)
}

func TestQuote_EmptyRegion(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.Quote(context.Background(), "")

	assert.True(t, domain.IsValidationError(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.CustomerInfo)
		wantField string
	}{
		{name: "valid", mutate: func(*domain.CustomerInfo) {}},
		{name: "missing email", mutate: func(c *domain.CustomerInfo) { c.Email = "" }, wantField: "email"},
		{name: "bad email", mutate: func(c *domain.CustomerInfo) { c.Email = "ada@" }, wantField: "email"},
		{name: "missing mobile", mutate: func(c *domain.CustomerInfo) { c.Mobile = "" }, wantField: "mobile"},
		{name: "missing name", mutate: func(c *domain.CustomerInfo) { c.FullName = "" }, wantField: "fullName"},
		{name: "missing address", mutate: func(c *domain.CustomerInfo) { c.Address = "" }, wantField: "address"},
		{name: "missing city", mutate: func(c *domain.CustomerInfo) { c.City = "" }, wantField: "city"},
		{name: "missing state", mutate: func(c *domain.CustomerInfo) { c.State = "" }, wantField: "state"},
		{name: "free-form phone accepted", mutate: func(c *domain.CustomerInfo) { c.Mobile = "call me" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := validInfo()
			tt.mutate(&info)

			err := Validate(info)

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.True(t, domain.IsValidationError(err), "got %v", err)
			assert.Contains(t, domain.GetValidationFields(err), tt.wantField)
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.payments.On("CreateIntent", mock.Anything, mock.MatchedBy(func(req service.IntentRequest) bool {
		return req.AmountMinor == 5500 &&
			req.DeliveryMinor == 500 &&
			req.Currency == "ngn" &&
			req.IdempotencyKey == "key-1" &&
			len(req.Items) == 2 &&
			req.Items[1].Quantity == 2
	})).Return(intentFor(5500), nil).Once()

	f.payments.On("Confirm", mock.Anything, "pi_1", mock.MatchedBy(func(req service.ConfirmRequest) bool {
		return req.ShippingAddress.City == "Ikeja" && len(req.Items) == 2 && req.IdempotencyKey == "key-1"
	})).Return(&domain.Order{ID: "ord_1", OrderNumber: "ORD-1", TotalMinor: 5500}, nil).Once()

	result, err := f.checkout.Submit(ctx, validInfo(), "pm_card_visa")

	require.NoError(t, err)
	assert.Equal(t, "ord_1", result.Order.ID)
	assert.Equal(t, int64(5500), result.Quote.TotalMinor)
	assert.Equal(t, "pi_1", result.IntentID)
	assert.Equal(t, StepDone, f.checkout.Step())
	assert.Equal(t, 0, f.cart.ItemCount())
	assert.Equal(t, []string{"ConfirmCard(pi_1, pm_card_visa)"}, f.authorizer.Calls())
	assert.Equal(t, []string{events.TypeCheckoutStarted, events.TypeCheckoutCompleted}, f.publisher.types())
	assert.Equal(t, "ord_1", f.publisher.events[1].OrderID)
	f.payments.AssertExpectations(t)
	f.payments.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestSubmit_AuthorizerFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.payments.On("CreateIntent", mock.Anything, mock.Anything).Return(intentFor(5500), nil).Once()
	f.payments.On("Cancel", mock.Anything, "pi_1").Return(nil).Once()
	f.authorizer.ConfirmCardFunc = func(context.Context, billing.ConfirmCardParams) (*billing.Authorization, error) {
		return nil, errors.New("sdk unavailable")
	}

	result, err := f.checkout.Submit(ctx, validInfo(), "pm_card_visa")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))
	assert.Equal(t, StepCollectingInfo, f.checkout.Step())
	assert.Equal(t, 3, f.cart.ItemCount())
	assert.Equal(t, int64(5000), f.cart.TotalPrice())
	assert.Equal(t, []string{events.TypeCheckoutStarted, events.TypeCheckoutFailed}, f.publisher.types())
	assert.Equal(t, domain.EPAYMENT, f.publisher.events[1].ErrorCode)
	f.payments.AssertExpectations(t)
	f.payments.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_CardDeclined(t *testing.T) {
	f := newFixture(t)

	f.payments.On("CreateIntent", mock.Anything, mock.Anything).Return(intentFor(5500), nil).Once()
	f.payments.On("Cancel", mock.Anything, "pi_1").Return(nil).Once()
	decline := domain.WrapError(&billing.DeclineError{Code: "card_declined", Message: "Your card was declined."},
		domain.EPAYMENT, "billing.confirm_card", "Your card was declined.")
	f.authorizer.ConfirmCardFunc = func(context.Context, billing.ConfirmCardParams) (*billing.Authorization, error) {
		return nil, decline
	}

	_, err := f.checkout.Submit(context.Background(), validInfo(), "pm_card_chargeDeclined")

	assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))
	assert.Equal(t, "Your card was declined.", domain.ErrorMessage(err))
	d, ok := billing.AsDecline(err)
	require.True(t, ok)
	assert.True(t, d.IsDeclined())
	assert.Equal(t, 3, f.cart.ItemCount())
	f.payments.AssertExpectations(t)
}

func TestSubmit_IntentFailure(t *testing.T) {
	f := newFixture(t)

	f.payments.On("CreateIntent", mock.Anything, mock.Anything).
		Return(nil, domain.Network(errors.New("dial tcp: refused"), "payment.create_intent")).Once()

	_, err := f.checkout.Submit(context.Background(), validInfo(), "pm_card_visa")

	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, StepCollectingInfo, f.checkout.Step())
	assert.Equal(t, 3, f.cart.ItemCount())
	assert.Empty(t, f.authorizer.Calls())
	f.payments.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestSubmit_ConfirmFailureCancelsIntent(t *testing.T) {
	f := newFixture(t)

	f.payments.On("CreateIntent", mock.Anything, mock.Anything).Return(intentFor(5500), nil).Once()
	f.payments.On("Confirm", mock.Anything, "pi_1", mock.Anything).
		Return(nil, &domain.Error{Code: domain.EUPSTREAM, Message: "Payment verification failed"}).Once()
	f.payments.On("Cancel", mock.Anything, "pi_1").Return(errors.New("already captured")).Once()

	_, err := f.checkout.Submit(context.Background(), validInfo(), "pm_card_visa")

	assert.Equal(t, domain.EUPSTREAM, domain.ErrorCode(err))
	assert.Equal(t, StepCollectingInfo, f.checkout.Step())
	assert.Equal(t, 3, f.cart.ItemCount())
	f.payments.AssertExpectations(t)
}

func TestSubmit_AmountMismatch(t *testing.T) {
	f := newFixture(t)

	f.payments.On("CreateIntent", mock.Anything, mock.Anything).Return(intentFor(9999), nil).Once()
	f.payments.On("Cancel", mock.Anything, "pi_1").Return(nil).Once()

	_, err := f.checkout.Submit(context.Background(), validInfo(), "pm_card_visa")

	assert.ErrorIs(t, err, ErrAmountChanged)
	assert.Empty(t, f.authorizer.Calls())
	f.payments.AssertExpectations(t)
}

func TestSubmit_RejectsBeforeAnyRequest(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*fixture)
		info      func() domain.CustomerInfo
		method    string
		wantField string
	}{
		{
			name:      "invalid customer info",
			info:      func() domain.CustomerInfo { i := validInfo(); i.Email = "nope"; return i },
			method:    "pm_card_visa",
			wantField: "email",
		},
		{
			name:      "missing payment method",
			info:      validInfo,
			method:    " ",
			wantField: "paymentMethod",
		},
		{
			name: "empty cart",
			setup: func(f *fixture) {
				require.NoError(t, f.cart.Clear(context.Background()))
			},
			info:      validInfo,
			method:    "pm_card_visa",
			wantField: "cart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			_, err := f.checkout.Submit(context.Background(), tt.info(), tt.method)

			require.True(t, domain.IsValidationError(err), "got %v", err)
			assert.Contains(t, domain.GetValidationFields(err), tt.wantField)
			assert.Equal(t, StepCollectingInfo, f.checkout.Step())
			f.payments.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
			assert.Empty(t, f.publisher.types())
		})
	}
}

func TestSubmit_ConcurrentSubmitRejected(t *testing.T) {
	f := newFixture(t)

	release := make(chan struct{})
	f.payments.On("CreateIntent", mock.Anything, mock.Anything).Return(intentFor(5500), nil).Once()
	f.payments.On("Confirm", mock.Anything, "pi_1", mock.Anything).Return(&domain.Order{ID: "ord_1"}, nil).Once()
	f.authorizer.ConfirmCardFunc = func(context.Context, billing.ConfirmCardParams) (*billing.Authorization, error) {
		<-release
		return &billing.Authorization{IntentID: "pi_1", Status: billing.StatusSucceeded}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.checkout.Submit(context.Background(), validInfo(), "pm_card_visa")
		done <- err
	}()

	require.Eventually(t, func() bool { return f.checkout.Step() == StepAuthorizing }, time.Second, 5*time.Millisecond)

	_, err := f.checkout.Submit(context.Background(), validInfo(), "pm_card_visa")
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StepDone, f.checkout.Step())
}

func TestSubmit_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	f.payments.On("CreateIntent", mock.Anything, mock.Anything).Return(intentFor(5500), nil).Once()
	f.payments.On("Confirm", mock.Anything, "pi_1", mock.Anything).Return(&domain.Order{ID: "ord_1"}, nil).Once()

	result, err := f.checkout.Submit(context.Background(), validInfo(), "pm_card_visa")

	require.NoError(t, err)
	assert.Equal(t, "ord_1", result.Order.ID)
}

func TestSubmit_PaymentsNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.checkout.authorizer = billing.Unconfigured{}

	_, err := f.checkout.Submit(context.Background(), validInfo(), "pm_card_visa")

	assert.ErrorIs(t, err, billing.ErrNotConfigured)
	assert.Len(t, f.cart.Items(), 2)
	f.payments.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.types())
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestReportable(t *testing.T) {
	assert.False(t, reportable(domain.NewValidationError("op", "email", "is required")))
	assert.False(t, reportable(&domain.Error{Code: domain.EPAYMENT}))
	assert.True(t, reportable(&domain.Error{Code: domain.EUPSTREAM}))
	assert.True(t, reportable(errors.New("boom")))
}
