package billing

import (
	"context"
	"fmt"
	"sync"
)

// MockAuthorizer is a mock Authorizer for testing.
// Simulates successful confirmations without calling Stripe.
type MockAuthorizer struct {
	// ConfirmCardFunc allows customizing confirmation behavior
	ConfirmCardFunc func(ctx context.Context, params ConfirmCardParams) (*Authorization, error)

	// Authorizations stores successful confirmations by intent ID
	Authorizations map[string]*Authorization

	// CallLog tracks method calls for test assertions
	CallLog []string

	mu sync.Mutex
}

// NewMockAuthorizer creates a new mock authorizer.
func NewMockAuthorizer() *MockAuthorizer {
	return &MockAuthorizer{
		Authorizations: make(map[string]*Authorization),
		CallLog:        []string{},
	}
}

// ConfirmCard records the call and confirms the intent.
func (m *MockAuthorizer) ConfirmCard(ctx context.Context, params ConfirmCardParams) (*Authorization, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("ConfirmCard(%s, %s)", params.IntentID, params.PaymentMethod))
	fn := m.ConfirmCardFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, params)
	}

	// Default mock behavior: the card is accepted
	intentID, err := resolveIntentID("billing.confirm_card", params)
	if err != nil {
		return nil, err
	}
	auth := &Authorization{
		IntentID:      intentID,
		Status:        StatusSucceeded,
		PaymentMethod: params.PaymentMethod,
	}

	m.mu.Lock()
	m.Authorizations[intentID] = auth
	m.mu.Unlock()
	return auth, nil
}

// Calls returns a copy of the call log.
func (m *MockAuthorizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.CallLog...)
}
