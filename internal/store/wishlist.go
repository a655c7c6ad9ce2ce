package store

import (
	"context"
	"sync"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/storage"
	"github.com/dukerupert/adorn/internal/telemetry"
	"github.com/rs/zerolog"
)

type wishlistState struct {
	Items []domain.Product `json:"items"`
}

// Wishlist is a persisted set of products keyed by ID.
type Wishlist struct {
	mu      sync.Mutex
	storage storage.Storage
	logger  zerolog.Logger
	metrics *telemetry.Metrics
	items   []domain.Product
}

func LoadWishlist(ctx context.Context, s storage.Storage, opts Options) (*Wishlist, error) {
	state, err := loadOrReset[wishlistState](ctx, s, WishlistKey, opts.Logger)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Product, 0, len(state.Items))
	seen := make(map[string]bool, len(state.Items))
	for _, p := range state.Items {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		items = append(items, p)
	}

	return &Wishlist{
		storage: s,
		logger:  opts.Logger.With().Str("store", "wishlist").Logger(),
		metrics: opts.Metrics,
		items:   items,
	}, nil
}

// commit persists next and swaps it in. Callers hold w.mu.
func (w *Wishlist) commit(ctx context.Context, op string, next []domain.Product) error {
	if err := save(ctx, w.storage, WishlistKey, wishlistState{Items: next}); err != nil {
		w.metrics.StateWriteError("wishlist")
		w.logger.Error().Err(err).Str("op", op).Msg("failed to persist wishlist")
		return domain.WrapError(err, domain.EINTERNAL, "wishlist."+op, "Could not save your wishlist")
	}
	w.items = next
	w.metrics.StateMutation("wishlist", op)
	return nil
}

func (w *Wishlist) indexOf(id string) int {
	for i, p := range w.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Add inserts product unless it is already present.
func (w *Wishlist) Add(ctx context.Context, product domain.Product) error {
	if product.ID == "" {
		return domain.NewValidationError("wishlist.add", "id", "Product ID is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.add(ctx, product)
}

// Remove deletes the product with id. Absent IDs are a no-op.
func (w *Wishlist) Remove(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.remove(ctx, id)
}

// Toggle adds product if absent and removes it otherwise. Reports whether
// the product is on the wishlist afterwards; on error the wishlist is
// unchanged. The check and the change happen under one lock, so concurrent
// toggles of the same product alternate.
func (w *Wishlist) Toggle(ctx context.Context, product domain.Product) (bool, error) {
	if product.ID == "" {
		return false, domain.NewValidationError("wishlist.toggle", "id", "Product ID is required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.indexOf(product.ID) >= 0 {
		if err := w.remove(ctx, product.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := w.add(ctx, product); err != nil {
		return false, err
	}
	return true, nil
}

// add and remove expect w.mu held.

func (w *Wishlist) add(ctx context.Context, product domain.Product) error {
	if w.indexOf(product.ID) >= 0 {
		return nil
	}
	next := append(w.snapshot(), product)
	return w.commit(ctx, "add", next)
}

func (w *Wishlist) remove(ctx context.Context, id string) error {
	i := w.indexOf(id)
	if i < 0 {
		return nil
	}
	next := w.snapshot()
	next = append(next[:i], next[i+1:]...)
	return w.commit(ctx, "remove", next)
}

// Clear empties the wishlist.
func (w *Wishlist) Clear(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commit(ctx, "clear", []domain.Product{})
}

// Contains is a linear scan; wishlists are small.
func (w *Wishlist) Contains(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOf(id) >= 0
}

func (w *Wishlist) Items() []domain.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Wishlist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

func (w *Wishlist) snapshot() []domain.Product {
	out := make([]domain.Product, len(w.items))
	copy(out, w.items)
	return out
}
