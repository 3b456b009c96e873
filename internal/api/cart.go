package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
	"github.com/No25ha/Market/pkg/httpclient"
)

// CartService manages the signed-in shopper's cart.
type CartService struct {
	doer   Doer
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(doer Doer, logger *slog.Logger) *CartService {
	return &CartService{doer: doer, logger: logger}
}

type cartEnvelope struct {
	Status         string      `json:"status"`
	NumOfCartItems int         `json:"numOfCartItems"`
	CartID         string      `json:"cartId"`
	Data           domain.Cart `json:"data"`
}

// cart resolves the cart id from the payload or the envelope.
func (e *cartEnvelope) cart() *domain.Cart {
	c := e.Data
	if c.ID == "" {
		c.ID = e.CartID
	}
	c.NumItems = e.NumOfCartItems
	c.Items = nonNil(c.Items)
	return &c
}

// Get returns the current cart.
func (s *CartService) Get(ctx context.Context, token string) (*domain.Cart, error) {
	var env cartEnvelope
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyCart),
		Route:  route(familyCart),
		Token:  token,
	}, "Failed to load cart.", &env)
	if err != nil {
		return nil, err
	}
	return env.cart(), nil
}

// Add puts one unit of productID in the cart. An empty productID is
// rejected without calling the upstream.
func (s *CartService) Add(ctx context.Context, token, productID string) error {
	if productID == "" {
		return apperrors.InvalidInput("Product ID is required to add to cart.")
	}
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPost,
		Path:   path(familyCart),
		Route:  route(familyCart),
		Body:   map[string]string{"productId": productID},
		Token:  token,
	}, "Failed to add to cart.", nil)
}

// Remove deletes productID's line from the cart.
func (s *CartService) Remove(ctx context.Context, token, productID string) error {
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodDelete,
		Path:   path(familyCart, productID),
		Route:  route(familyCart, "{productId}"),
		Token:  token,
	}, "Failed to remove from cart.", nil)
}

// Update sets the quantity of productID's line. quantity must be at least 1.
func (s *CartService) Update(ctx context.Context, token, productID string, quantity int) error {
	if quantity < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPut,
		Path:   path(familyCart, productID),
		Route:  route(familyCart, "{productId}"),
		Body:   map[string]int{"count": quantity},
		Token:  token,
	}, "Failed to update item quantity.", nil)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, token string) error {
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodDelete,
		Path:   path(familyCart),
		Route:  route(familyCart),
		Token:  token,
	}, "Failed to clear cart.", nil)
}

// ApplyCoupon applies a coupon code to the cart.
func (s *CartService) ApplyCoupon(ctx context.Context, token, code string) error {
	if code == "" {
		return apperrors.InvalidInput("Coupon code is required.")
	}
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPut,
		Path:   path(familyCart, "applyCoupon"),
		Route:  route(familyCart, "applyCoupon"),
		Body:   map[string]string{"couponName": code},
		Token:  token,
	}, "Failed to apply coupon.", nil)
}
