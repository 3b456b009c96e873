package http

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
	"github.com/No25ha/Market/pkg/httpclient"
)

func sampleCart() domain.Cart {
	return domain.Cart{
		ID: "cart-1",
		Items: []domain.CartItem{
			{ID: "line-1", Product: domain.ProductRef{ID: "p1", Title: "Shirt"}, Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		},
		Subtotal: decimal.NewFromInt(200),
		NumItems: 1,
	}
}

func TestCartHandler_GetCart(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.cart.cart = sampleCart()
	f.cart.err = "Failed to update cart."

	rec := f.do(http.MethodGet, "/api/v1/cart", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got CartResponse
	decodeData(t, rec, &got)
	assert.Equal(t, "cart-1", got.Cart.ID)
	require.Len(t, got.Cart.Items, 1)
	assert.Equal(t, 2, got.Cart.Items[0].Quantity)
	assert.Equal(t, "Failed to update cart.", got.Error)
	assert.False(t, got.Loading)
}

func TestCartHandler_AddItem(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.cart.cart = sampleCart()
	f.cart.On("AddToCart", anyCtx, "p1").Return(nil).Once()

	rec := f.do(http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: "p1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var got CartResponse
	decodeData(t, rec, &got)
	assert.Equal(t, 1, got.Cart.NumItems)
}

func TestCartHandler_AddItem_MissingProduct(t *testing.T) {
	f := newFixture(t, RouterConfig{})

	rec := f.do(http.MethodPost, "/api/v1/cart/items", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is required", decodeError(t, rec).Fields["productId"])
}

func TestCartHandler_AddItem_SignedOut(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.cart.On("AddToCart", anyCtx, "p1").Return(apperrors.Unauthorized("Please login to add items to cart")).Once()

	rec := f.do(http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: "p1"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please login to add items to cart", decodeError(t, rec).Message)
}

func TestCartHandler_AddItem_UpstreamUnavailable(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.cart.On("AddToCart", anyCtx, "p1").Return(&httpclient.APIError{
		Message: "Failed to add to cart.",
		Cause:   httpclient.ErrCircuitOpen,
	}).Once()

	rec := f.do(http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: "p1"})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", decodeError(t, rec).Code)
}

func TestCartHandler_UpdateItemQuantity(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"positive", 3},
		{"zero removes", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, RouterConfig{})
			f.cart.On("UpdateQuantity", anyCtx, "p1", tc.count).Return(nil).Once()

			rec := f.do(http.MethodPut, "/api/v1/cart/items/p1", map[string]int{"count": tc.count})

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestCartHandler_UpdateItemQuantity_Invalid(t *testing.T) {
	f := newFixture(t, RouterConfig{})

	rec := f.do(http.MethodPut, "/api/v1/cart/items/p1", map[string]int{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is required", decodeError(t, rec).Fields["count"])

	rec = f.do(http.MethodPut, "/api/v1/cart/items/p1", map[string]int{"count": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "count")
}

func TestCartHandler_RemoveItem(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.cart.On("RemoveFromCart", anyCtx, "p1").Return(nil).Once()

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/v1/cart/items/p1", nil).Code)
}

func TestCartHandler_ClearAndRefresh(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.cart.On("Clear", anyCtx).Return(nil).Once()
	f.cart.On("Refresh", anyCtx).Return(nil).Once()

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/v1/cart", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/cart/refresh", nil).Code)
}

func TestCartHandler_ApplyCoupon(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.cart.On("ApplyCoupon", anyCtx, "SAVE10").Return(nil).Once()
	f.cart.On("ApplyCoupon", anyCtx, "BOGUS").Return(&httpclient.APIError{
		Status:  http.StatusBadRequest,
		Message: "Coupon is invalid or has expired",
	}).Once()

	rec := f.do(http.MethodPut, "/api/v1/cart/coupon", ApplyCouponRequest{Code: "SAVE10"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPut, "/api/v1/cart/coupon", ApplyCouponRequest{Code: "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Coupon is invalid or has expired", decodeError(t, rec).Message)
}
