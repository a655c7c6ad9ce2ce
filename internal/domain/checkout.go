package domain

// =============================================================================
// CHECKOUT DOMAIN TYPES
// =============================================================================

// CustomerInfo is the contact and delivery information collected before payment.
// Every field is required; only the email gets a format check.
type CustomerInfo struct {
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"required"`
	FullName string `json:"fullName" validate:"required"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
}

// ShippingAddress returns the delivery part of the customer info.
func (c CustomerInfo) ShippingAddress() ShippingAddress {
	return ShippingAddress{
		Address: c.Address,
		City:    c.City,
		State:   c.State,
	}
}

// PaymentIntent is a server-issued payment intent. ClientSecret authorises the
// card SDK exactly once and is never persisted.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"-"`
	AmountMinor  int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status,omitempty"`
}

// Quote is the checkout total for the current cart and delivery region.
type Quote struct {
	Region        string `json:"region"`
	SubtotalMinor int64  `json:"subtotal"`
	DeliveryMinor int64  `json:"deliveryFee"`
	TotalMinor    int64  `json:"total"`
	Currency      string `json:"currency"`
}
