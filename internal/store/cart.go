package store

import (
	"context"
	"log/slog"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/retry"
)

// CartAPI is the upstream cart resource.
type CartAPI interface {
	Get(ctx context.Context, token string) (*domain.Cart, error)
	Add(ctx context.Context, token, productID string) error
	Remove(ctx context.Context, token, productID string) error
	Update(ctx context.Context, token, productID string, quantity int) error
	Clear(ctx context.Context, token string) error
	ApplyCoupon(ctx context.Context, token, code string) error
}

const (
	msgCartLogin  = "Please login to add items to cart"
	msgCartManage = "Please login to manage cart"
)

// Cart is the shopper's cart as last seen on the server.
type Cart struct {
	status

	api     CartAPI
	session Session
	policy  retry.Policy
	logger  *slog.Logger

	cart domain.Cart
}

// NewCart creates an empty cart store.
func NewCart(api CartAPI, sess Session, policy retry.Policy, logger *slog.Logger) *Cart {
	return &Cart{
		api:     api,
		session: sess,
		policy:  policy,
		logger:  logger,
	}
}

// Load fetches the cart. Without a session it does nothing. A missing
// cart (404 or 500) reads as empty. The cart id of every successful load
// is persisted for checkout.
func (c *Cart) Load(ctx context.Context) error {
	token := c.session.Token()
	if token == "" {
		return nil
	}
	epoch, writes := c.generation()
	return c.coalesce(ctx, epoch, func(ctx context.Context) error {
		return c.load(ctx, token, epoch, writes)
	}, "cart", "load", loadKey(writes))
}

// Refresh reloads the cart, ignoring any load already in flight.
func (c *Cart) Refresh(ctx context.Context) error {
	c.invalidate()
	return c.Load(ctx)
}

func (c *Cart) load(ctx context.Context, token string, epoch, writes uint64) error {
	c.begin()
	defer c.end()

	cart, err := retry.Do(ctx, readPolicy(c.policy), "cart.load", func(ctx context.Context) (*domain.Cart, error) {
		return c.api.Get(ctx, token)
	})
	if err != nil {
		if httpclient.IsAbsent(err) {
			c.logger.DebugContext(ctx, "no cart upstream, showing empty cart")
			c.replace(epoch, writes, domain.Cart{})
			return nil
		}
		c.logger.ErrorContext(ctx, "failed to load cart", slog.String("error", err.Error()))
		c.fail(epoch, err)
		return err
	}

	if c.replace(epoch, writes, *cart) && cart.ID != "" {
		c.session.RememberCartID(ctx, cart.ID)
	}
	c.logger.DebugContext(ctx, "cart loaded",
		slog.String("cart_id", cart.ID),
		slog.Int("lines", len(cart.Items)),
	)
	return nil
}

// replace installs cart unless the store was reset or written since the
// load started.
func (c *Cart) replace(epoch, writes uint64, cart domain.Cart) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.freshLocked(epoch, writes) {
		return false
	}
	c.cart = cart
	c.err = ""
	return true
}

// AddToCart adds one unit of productID, then reloads.
func (c *Cart) AddToCart(ctx context.Context, productID string) error {
	token, epoch, err := c.authorize(c.session, msgCartLogin)
	if err != nil {
		return err
	}

	err = c.coalesce(ctx, epoch, func(ctx context.Context) error {
		return retry.Run(ctx, c.policy, "cart.add", func(ctx context.Context) error {
			return c.api.Add(ctx, token, productID)
		})
	}, "cart", "add", productID)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to add to cart",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		c.fail(epoch, err)
		return err
	}
	return c.Refresh(ctx)
}

// RemoveFromCart removes productID's line, drops it locally, then reloads.
func (c *Cart) RemoveFromCart(ctx context.Context, productID string) error {
	token, epoch, err := c.authorize(c.session, msgCartManage)
	if err != nil {
		return err
	}

	err = c.coalesce(ctx, epoch, func(ctx context.Context) error {
		return retry.Run(ctx, c.policy, "cart.remove", func(ctx context.Context) error {
			return c.api.Remove(ctx, token, productID)
		})
	}, "cart", "remove", productID)
	if err != nil {
		c.fail(epoch, err)
		return err
	}

	c.mu.Lock()
	if c.epoch == epoch {
		c.cart = c.cart.WithoutProduct(productID)
		c.cart.NumItems = len(c.cart.Items)
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// UpdateQuantity sets productID's quantity. A quantity below 1 removes
// the line instead.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return c.RemoveFromCart(ctx, productID)
	}

	token, epoch, err := c.authorize(c.session, msgCartManage)
	if err != nil {
		return err
	}

	err = retry.Run(ctx, c.policy, "cart.update", func(ctx context.Context) error {
		return c.api.Update(ctx, token, productID, quantity)
	})
	if err != nil {
		c.fail(epoch, err)
		return err
	}
	return c.Refresh(ctx)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	token, epoch, err := c.authorize(c.session, msgCartManage)
	if err != nil {
		return err
	}

	err = c.coalesce(ctx, epoch, func(ctx context.Context) error {
		return retry.Run(ctx, c.policy, "cart.clear", func(ctx context.Context) error {
			return c.api.Clear(ctx, token)
		})
	}, "cart", "clear")
	if err != nil {
		c.fail(epoch, err)
		return err
	}

	c.mu.Lock()
	c.writes++
	if c.epoch == epoch {
		c.cart = domain.Cart{ID: c.cart.ID}
	}
	c.mu.Unlock()
	return nil
}

// ApplyCoupon applies code and reloads. The store is marked loading for
// the duration. Its failure is returned to the caller and not recorded in
// Err.
func (c *Cart) ApplyCoupon(ctx context.Context, code string) error {
	token := c.session.Token()
	if token == "" {
		return apperrors.Unauthorized(msgCartManage)
	}

	c.begin()
	defer c.end()

	err := retry.Run(ctx, c.policy, "cart.apply_coupon", func(ctx context.Context) error {
		return c.api.ApplyCoupon(ctx, token, code)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "coupon rejected", slog.String("error", err.Error()))
		return err
	}
	return c.Refresh(ctx)
}

// Snapshot returns a copy of the cart.
func (c *Cart) Snapshot() domain.Cart {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cart := c.cart
	cart.Items = append([]domain.CartItem{}, c.cart.Items...)
	return cart
}

// IsInCart reports whether productID has a line in the cart.
func (c *Cart) IsInCart(productID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.cart.Find(productID)
	return ok
}

// ItemQuantity returns productID's quantity, or 0.
func (c *Cart) ItemQuantity(productID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, _ := c.cart.Find(productID)
	return item.Quantity
}

// CartID returns the id of the loaded cart, or "".
func (c *Cart) CartID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.ID
}

// Reset empties the store and discards results of calls still in flight.
func (c *Cart) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.cart = domain.Cart{}
}
