package domain

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity cannot be negative"}
	ErrCartEmpty        = &Error{Code: EINVALID, Message: "Your cart is empty"}
)

// =============================================================================
// CART DOMAIN TYPES
// =============================================================================

// CartItem is one line in the shopping cart.
// Quantity is always at least 1; there is one entry per product ID.
type CartItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price"`
	Image      string `json:"image,omitempty"`
	Quantity   int    `json:"quantity"`
}

// LineTotal is price × quantity in minor units.
func (i CartItem) LineTotal() int64 {
	return i.PriceMinor * int64(i.Quantity)
}

// NewCartItem projects a product into a cart line with quantity 1.
func NewCartItem(p Product) CartItem {
	return CartItem{
		ID:         p.ID,
		Name:       p.Name,
		PriceMinor: p.PriceMinor,
		Image:      p.PrimaryImage(),
		Quantity:   1,
	}
}

// CartSummary is a snapshot of the cart with derived totals.
type CartSummary struct {
	Items      []CartItem `json:"items"`
	ItemCount  int        `json:"itemCount"`
	TotalMinor int64      `json:"total"`
}
