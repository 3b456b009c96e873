package store

import (
	"context"
	"log/slog"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/retry"
)

// OrderAPI is the upstream order listing.
type OrderAPI interface {
	ListForUser(ctx context.Context, token, userID string) ([]domain.Order, error)
}

// Orders holds the shopper's order history.
type Orders struct {
	status

	api     OrderAPI
	session Session
	policy  retry.Policy
	logger  *slog.Logger

	orders []domain.Order
}

// NewOrders creates an empty order history store.
func NewOrders(api OrderAPI, sess Session, policy retry.Policy, logger *slog.Logger) *Orders {
	return &Orders{
		api:     api,
		session: sess,
		policy:  policy,
		logger:  logger,
	}
}

// Load fetches the order history of the signed-in user. Without a known
// user id the upstream is asked for the token's own orders. A failure
// empties the history.
func (o *Orders) Load(ctx context.Context) error {
	token := o.session.Token()
	epoch, writes := o.generation()
	if token == "" {
		o.replace(epoch, writes, nil)
		return nil
	}

	var userID string
	if u := o.session.User(); u != nil {
		userID = u.ID
	}
	if userID == "" {
		o.logger.WarnContext(ctx, "no user id, loading orders for the token")
	}

	return o.coalesce(ctx, epoch, func(ctx context.Context) error {
		o.begin()
		defer o.end()

		orders, err := retry.Do(ctx, o.policy, "orders.load", func(ctx context.Context) ([]domain.Order, error) {
			return o.api.ListForUser(ctx, token, userID)
		})
		if err != nil {
			o.logger.ErrorContext(ctx, "failed to load orders", slog.String("error", err.Error()))
			o.replace(epoch, writes, nil)
			o.fail(epoch, err)
			return err
		}
		o.replace(epoch, writes, orders)
		return nil
	}, "orders", "load", userID, loadKey(writes))
}

// Refresh reloads the order history, ignoring any load already in flight.
func (o *Orders) Refresh(ctx context.Context) error {
	o.invalidate()
	return o.Load(ctx)
}

func (o *Orders) replace(epoch, writes uint64, orders []domain.Order) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.freshLocked(epoch, writes) {
		return
	}
	o.orders = orders
	o.err = ""
}

// Snapshot returns a copy of the order history.
func (o *Orders) Snapshot() []domain.Order {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]domain.Order{}, o.orders...)
}

// Reset empties the store and discards results of calls still in flight.
func (o *Orders) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetLocked()
	o.orders = nil
}
