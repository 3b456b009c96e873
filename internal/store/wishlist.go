package store

import (
	"context"
	"log/slog"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/retry"
)

// WishlistAPI is the upstream wishlist resource.
type WishlistAPI interface {
	List(ctx context.Context, token string) ([]domain.WishlistItem, error)
	Add(ctx context.Context, token, productID string) error
	Remove(ctx context.Context, token, id string) error
}

// Wishlist holds the shopper's saved products.
type Wishlist struct {
	status

	api     WishlistAPI
	session Session
	policy  retry.Policy
	logger  *slog.Logger

	items []domain.WishlistItem
}

// NewWishlist creates an empty wishlist store.
func NewWishlist(api WishlistAPI, sess Session, policy retry.Policy, logger *slog.Logger) *Wishlist {
	return &Wishlist{
		api:     api,
		session: sess,
		policy:  policy,
		logger:  logger,
	}
}

// Load fetches the wishlist. Without a session it does nothing; a missing
// wishlist reads as empty.
func (w *Wishlist) Load(ctx context.Context) error {
	token := w.session.Token()
	if token == "" {
		return nil
	}
	epoch, writes := w.generation()
	return w.coalesce(ctx, epoch, func(ctx context.Context) error {
		w.begin()
		defer w.end()

		items, err := retry.Do(ctx, readPolicy(w.policy), "wishlist.load", func(ctx context.Context) ([]domain.WishlistItem, error) {
			return w.api.List(ctx, token)
		})
		if err != nil && !httpclient.IsAbsent(err) {
			w.logger.ErrorContext(ctx, "failed to load wishlist", slog.String("error", err.Error()))
			w.fail(epoch, err)
			return err
		}
		w.replace(epoch, writes, items)
		return nil
	}, "wishlist", "load", loadKey(writes))
}

// Refresh reloads the wishlist, ignoring any load already in flight.
func (w *Wishlist) Refresh(ctx context.Context) error {
	w.invalidate()
	return w.Load(ctx)
}

func (w *Wishlist) replace(epoch, writes uint64, items []domain.WishlistItem) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.freshLocked(epoch, writes) {
		return
	}
	w.items = items
	w.err = ""
}

// Add saves productID, then reloads.
func (w *Wishlist) Add(ctx context.Context, productID string) error {
	token, epoch, err := w.authorize(w.session, "Please login to add items to wishlist")
	if err != nil {
		return err
	}

	err = w.coalesce(ctx, epoch, func(ctx context.Context) error {
		return retry.Run(ctx, w.policy, "wishlist.add", func(ctx context.Context) error {
			return w.api.Add(ctx, token, productID)
		})
	}, "wishlist", "add", productID)
	if err != nil {
		w.fail(epoch, err)
		return err
	}
	return w.Refresh(ctx)
}

// Remove deletes the entry identified by id, drops it locally, then
// reloads.
func (w *Wishlist) Remove(ctx context.Context, id string) error {
	token, epoch, err := w.authorize(w.session, "Please login to remove items from wishlist")
	if err != nil {
		return err
	}

	err = w.coalesce(ctx, epoch, func(ctx context.Context) error {
		return retry.Run(ctx, w.policy, "wishlist.remove", func(ctx context.Context) error {
			return w.api.Remove(ctx, token, id)
		})
	}, "wishlist", "remove", id)
	if err != nil {
		w.fail(epoch, err)
		return err
	}

	w.mu.Lock()
	if w.epoch == epoch {
		kept := make([]domain.WishlistItem, 0, len(w.items))
		for _, item := range w.items {
			if !item.Matches(id) {
				kept = append(kept, item)
			}
		}
		w.items = kept
	}
	w.mu.Unlock()

	return w.Refresh(ctx)
}

// IsInWishlist reports whether key is the entry id or product id of a
// saved item.
func (w *Wishlist) IsInWishlist(key string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, item := range w.items {
		if item.Matches(key) {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the saved items.
func (w *Wishlist) Snapshot() []domain.WishlistItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]domain.WishlistItem{}, w.items...)
}

// Reset empties the store and discards results of calls still in flight.
func (w *Wishlist) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
	w.items = nil
}
