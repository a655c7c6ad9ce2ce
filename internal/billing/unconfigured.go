package billing

import (
	"context"

	"github.com/dukerupert/adorn/internal/domain"
)

// ErrNotConfigured is returned when card payments have no provider key.
var ErrNotConfigured = &domain.Error{
	Code:    domain.ENOTIMPL,
	Message: "Card payments are not available right now",
}

// Unconfigured is the Authorizer used when no payment provider is set up.
// Every confirmation fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) ConfirmCard(context.Context, ConfirmCardParams) (*Authorization, error) {
	return nil, ErrNotConfigured
}

// Ready reports whether a can take payments.
func Ready(a Authorizer) error {
	if _, ok := a.(Unconfigured); ok {
		return ErrNotConfigured
	}
	return nil
}
