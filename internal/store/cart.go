package store

import (
	"context"
	"sync"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/storage"
	"github.com/dukerupert/adorn/internal/telemetry"
	"github.com/rs/zerolog"
)

type cartState struct {
	Items []domain.CartItem `json:"items"`
}

// Cart is the persisted shopping cart. There is one entry per product ID and
// every entry has quantity >= 1. Safe for concurrent use; a mutation only
// takes effect in memory once it has been written to storage.
type Cart struct {
	mu      sync.Mutex
	storage storage.Storage
	logger  zerolog.Logger
	metrics *telemetry.Metrics
	items   []domain.CartItem
}

// LoadCart reads the persisted cart. A missing record yields an empty cart;
// an unreadable one is discarded.
func LoadCart(ctx context.Context, s storage.Storage, opts Options) (*Cart, error) {
	state, err := loadOrReset[cartState](ctx, s, CartKey, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Cart{
		storage: s,
		logger:  opts.Logger.With().Str("store", "cart").Logger(),
		metrics: opts.Metrics,
		items:   normalizeCart(state.Items),
	}, nil
}

// normalizeCart merges duplicate IDs and drops entries that break the
// quantity invariant, e.g. from a record written by an older client.
func normalizeCart(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		if i, ok := index[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

func (c *Cart) mutate(ctx context.Context, op string, fn func([]domain.CartItem) ([]domain.CartItem, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(cloneItems(c.items))
	if err != nil {
		return err
	}

	if err := save(ctx, c.storage, CartKey, cartState{Items: next}); err != nil {
		c.metrics.StateWriteError("cart")
		c.logger.Error().Err(err).Str("op", op).Msg("failed to persist cart")
		return domain.WrapError(err, domain.EINTERNAL, "cart."+op, "Could not save your cart")
	}

	c.items = next
	c.metrics.StateMutation("cart", op)
	return nil
}

// AddItem adds one unit of product. An existing entry is incremented.
func (c *Cart) AddItem(ctx context.Context, product domain.Product) error {
	if product.ID == "" {
		return domain.NewValidationError("cart.add", "id", "Product ID is required")
	}

	return c.mutate(ctx, "add", func(items []domain.CartItem) ([]domain.CartItem, error) {
		for i := range items {
			if items[i].ID == product.ID {
				items[i].Quantity++
				return items, nil
			}
		}
		return append(items, domain.NewCartItem(product)), nil
	})
}

// UpdateQuantity sets the quantity of an entry. Zero removes it; negative
// quantities are rejected.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return domain.ErrInvalidQuantity
	}

	return c.mutate(ctx, "update", func(items []domain.CartItem) ([]domain.CartItem, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if quantity == 0 {
				return append(items[:i], items[i+1:]...), nil
			}
			items[i].Quantity = quantity
			return items, nil
		}
		return nil, domain.ErrCartItemNotFound
	})
}

// RemoveItem deletes an entry. Removing an absent ID is a no-op.
func (c *Cart) RemoveItem(ctx context.Context, id string) error {
	if !c.Contains(id) {
		return nil
	}

	return c.mutate(ctx, "remove", func(items []domain.CartItem) ([]domain.CartItem, error) {
		out := items[:0]
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out, nil
	})
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	return c.mutate(ctx, "clear", func([]domain.CartItem) ([]domain.CartItem, error) {
		return []domain.CartItem{}, nil
	})
}

// Contains reports whether the cart has an entry for id.
func (c *Cart) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Items returns a copy of the cart entries in insertion order.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// ItemCount is the sum of quantities, not the number of entries.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is Σ price × quantity in minor units.
func (c *Cart) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.items {
		total += it.LineTotal()
	}
	return total
}

// Summary returns items and totals from a single consistent snapshot.
func (c *Cart) Summary() domain.CartSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := domain.CartSummary{Items: cloneItems(c.items)}
	for _, it := range c.items {
		s.ItemCount += it.Quantity
		s.TotalMinor += it.LineTotal()
	}
	return s
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
