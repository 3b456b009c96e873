package store

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/No25ha/Market/internal/session"
	"github.com/No25ha/Market/pkg/eventbus"
)

// Storefront keeps the four session-scoped stores in step with the
// session: they are emptied when it ends and reloaded when a new identity
// signs in.
type Storefront struct {
	Cart      *Cart
	Wishlist  *Wishlist
	Addresses *AddressBook
	Orders    *Orders

	logger      *slog.Logger
	unsubscribe func()

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStorefront groups the stores and subscribes them to changes.
func NewStorefront(cart *Cart, wishlist *Wishlist, addresses *AddressBook, orders *Orders, changes *eventbus.Bus[session.Change], logger *slog.Logger) *Storefront {
	sf := &Storefront{
		Cart:      cart,
		Wishlist:  wishlist,
		Addresses: addresses,
		Orders:    orders,
		logger:    logger,
	}
	if changes != nil {
		sf.unsubscribe = changes.Subscribe(sf.handleChange)
	}
	return sf
}

func (sf *Storefront) handleChange(ctx context.Context, c session.Change) {
	if !c.Current.IsAuthenticated() {
		sf.Reset()
		return
	}
	if !c.IdentityChanged() {
		return
	}

	sf.Reset()
	sf.reloadAsync(ctx)
}

// reloadAsync reloads every store in the background. The reload outlives
// the publishing request but is cancelled by the next Reset or Close.
func (sf *Storefront) reloadAsync(ctx context.Context) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	sf.mu.Lock()
	sf.cancel = cancel
	sf.wg.Add(1)
	sf.mu.Unlock()

	go func() {
		defer sf.wg.Done()
		defer cancel()
		if err := sf.Reload(ctx); err != nil {
			sf.logger.WarnContext(ctx, "session reload finished with errors", slog.String("error", err.Error()))
		}
	}()
}

// Reload loads all four stores in parallel and returns the first error.
// Each store records its own failure.
func (sf *Storefront) Reload(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return sf.Cart.Load(ctx) })
	g.Go(func() error { return sf.Wishlist.Load(ctx) })
	g.Go(func() error { return sf.Addresses.Load(ctx) })
	g.Go(func() error { return sf.Orders.Load(ctx) })
	return g.Wait()
}

// Reset cancels any background reload and empties all four stores.
func (sf *Storefront) Reset() {
	sf.mu.Lock()
	if sf.cancel != nil {
		sf.cancel()
		sf.cancel = nil
	}
	sf.mu.Unlock()

	sf.Cart.Reset()
	sf.Wishlist.Reset()
	sf.Addresses.Reset()
	sf.Orders.Reset()
}

// Wait blocks until background reloads have finished.
func (sf *Storefront) Wait() {
	sf.wg.Wait()
}

// Close stops listening for session changes and waits for background work.
func (sf *Storefront) Close() {
	if sf.unsubscribe != nil {
		sf.unsubscribe()
	}
	sf.mu.Lock()
	if sf.cancel != nil {
		sf.cancel()
		sf.cancel = nil
	}
	sf.mu.Unlock()
	sf.wg.Wait()
}
