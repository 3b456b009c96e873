package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
	"github.com/No25ha/Market/pkg/httpclient"
)

// WishlistService manages saved products.
type WishlistService struct {
	doer   Doer
	logger *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(doer Doer, logger *slog.Logger) *WishlistService {
	return &WishlistService{doer: doer, logger: logger}
}

// List returns the saved products.
func (s *WishlistService) List(ctx context.Context, token string) ([]domain.WishlistItem, error) {
	var env listEnvelope[domain.WishlistItem]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyWishlist),
		Route:  route(familyWishlist),
		Token:  token,
	}, "Failed to load wishlist.", &env)
	if err != nil {
		return nil, err
	}
	return nonNil(env.Data), nil
}

// Add saves productID.
func (s *WishlistService) Add(ctx context.Context, token, productID string) error {
	if productID == "" {
		return apperrors.InvalidInput("Product ID is required to add to wishlist.")
	}
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPost,
		Path:   path(familyWishlist),
		Route:  route(familyWishlist),
		Body:   map[string]string{"productId": productID},
		Token:  token,
	}, "Failed to add to wishlist.", nil)
}

// Remove deletes the saved entry with id.
func (s *WishlistService) Remove(ctx context.Context, token, id string) error {
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodDelete,
		Path:   path(familyWishlist, id),
		Route:  route(familyWishlist, "{id}"),
		Token:  token,
	}, "Failed to remove from wishlist.", nil)
}
