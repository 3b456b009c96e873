package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httpclient"
)

// OrderService places and lists orders.
type OrderService struct {
	doer   Doer
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(doer Doer, logger *slog.Logger) *OrderService {
	return &OrderService{doer: doer, logger: logger}
}

type shippingBody struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

// CreateCashOrder turns cartID into a cash-on-delivery order.
func (s *OrderService) CreateCashOrder(ctx context.Context, token, cartID string, shipping domain.ShippingAddress) (*domain.Order, error) {
	var env itemEnvelope[domain.Order]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPost,
		Path:   path(familyOrders, cartID),
		Route:  route(familyOrders, "{cartId}"),
		Body:   shippingBody{ShippingAddress: shipping},
		Token:  token,
	}, "Failed to create order.", &env)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateCheckoutSession starts a hosted card payment for cartID. The
// payment page sends the shopper back to returnURL.
func (s *OrderService) CreateCheckoutSession(ctx context.Context, token, cartID string, shipping domain.ShippingAddress, returnURL string) (*domain.CheckoutSession, error) {
	var out struct {
		Status  string                 `json:"status"`
		Session domain.CheckoutSession `json:"session"`
	}
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPost,
		Path:   path(familyOrders, "checkout-session", cartID),
		Route:  route(familyOrders, "checkout-session", "{cartId}"),
		Query:  url.Values{"url": {returnURL}},
		Body:   shippingBody{ShippingAddress: shipping},
		Token:  token,
	}, "Failed to create checkout session.", &out)
	if err != nil {
		return nil, err
	}
	return &out.Session, nil
}

// ListForUser returns the orders of userID. When the id is unknown the
// orders visible to token are listed instead. A 404 means no orders.
func (s *OrderService) ListForUser(ctx context.Context, token, userID string) ([]domain.Order, error) {
	p, r := path(familyOrders), route(familyOrders)
	if !isBlankID(userID) {
		p, r = path(familyOrders, "user", userID), route(familyOrders, "user", "{userId}")
	}

	orders, err := s.list(ctx, &httpclient.Request{
		Method: http.MethodGet,
		Path:   p,
		Route:  r,
		Token:  token,
	}, "Failed to load your orders.")
	if httpclient.StatusOf(err) == http.StatusNotFound {
		return []domain.Order{}, nil
	}
	return orders, err
}

// ListAll returns every order the upstream exposes without a session.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.list(ctx, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyOrders),
		Route:  route(familyOrders),
	}, "Failed to load orders.")
}

// list accepts both a bare array and a {data: [...]} envelope.
func (s *OrderService) list(ctx context.Context, req *httpclient.Request, fallback string) ([]domain.Order, error) {
	var raw json.RawMessage
	if err := call(ctx, s.doer, s.logger, req, fallback, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var orders []domain.Order
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return nil, httpclient.Describe(err, fallback)
		}
		return nonNil(orders), nil
	}

	var env listEnvelope[domain.Order]
	if len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, httpclient.Describe(err, fallback)
		}
	}
	return nonNil(env.Data), nil
}

// isBlankID reports whether id is empty or one of the placeholder strings
// left behind by serializing a missing value.
func isBlankID(id string) bool {
	return id == "" || id == "undefined" || id == "null"
}
