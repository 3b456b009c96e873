// Package checkout turns the shopper's cart into an order, either paid on
// delivery or through a hosted card payment page.
package checkout

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
)

var ordersPlaced = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Checkout attempts by payment method and outcome",
	},
	[]string{"method", "outcome"},
)

func init() {
	prometheus.MustRegister(ordersPlaced)
}

// OrderAPI is the upstream order creation endpoints.
type OrderAPI interface {
	CreateCashOrder(ctx context.Context, token, cartID string, shipping domain.ShippingAddress) (*domain.Order, error)
	CreateCheckoutSession(ctx context.Context, token, cartID string, shipping domain.ShippingAddress, returnURL string) (*domain.CheckoutSession, error)
}

// Session provides the token and the cart id persisted by the last cart
// load.
type Session interface {
	Token() string
	CachedCartID(ctx context.Context) string
}

// Cart is the cart store as seen by checkout.
type Cart interface {
	CartID() string
	Refresh(ctx context.Context) error
}

// Addresses is the address book as seen by checkout.
type Addresses interface {
	Selected() (domain.Address, bool)
}

// Orders is the order history as seen by checkout.
type Orders interface {
	Refresh(ctx context.Context) error
}

// Result is the outcome of PlaceOrder. Order is set for cash orders;
// RedirectURL is set for card payments and must be opened by the shopper.
type Result struct {
	Method      domain.PaymentMethod `json:"paymentMethod"`
	Order       *domain.Order        `json:"order,omitempty"`
	RedirectURL string               `json:"redirectUrl,omitempty"`
}

// CheckoutService places orders for the current session.
type CheckoutService struct {
	orders           OrderAPI
	session          Session
	cart             Cart
	addresses        Addresses
	history          Orders
	defaultReturnURL string
	logger           *slog.Logger
}

// NewCheckoutService creates a new checkout service. defaultReturnURL is
// where the card payment page returns when the caller gives none.
func NewCheckoutService(
	orders OrderAPI,
	session Session,
	cart Cart,
	addresses Addresses,
	history Orders,
	defaultReturnURL string,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:           orders,
		session:          session,
		cart:             cart,
		addresses:        addresses,
		history:          history,
		defaultReturnURL: defaultReturnURL,
		logger:           logger,
	}
}

// PlaceOrder checks out the cart to the selected address.
//
// Order creation is attempted once: the upstream offers no idempotency
// key, so a retried create could place the order twice.
func (s *CheckoutService) PlaceOrder(ctx context.Context, method domain.PaymentMethod, returnURL string) (*Result, error) {
	if !method.Valid() {
		return nil, apperrors.InvalidInput("payment method must be cash or card")
	}

	address, ok := s.addresses.Selected()
	if !ok {
		return nil, apperrors.InvalidInput("Please select a delivery address")
	}

	token := s.session.Token()
	if token == "" {
		return nil, apperrors.Unauthorized("Your session has expired. Please sign in again.")
	}

	cartID := s.cart.CartID()
	if isBlank(cartID) {
		cartID = s.session.CachedCartID(ctx)
	}
	if isBlank(cartID) {
		return nil, apperrors.InvalidInput("Your cart has expired or is invalid. Please add items again.")
	}

	shipping := address.Shipping()
	if method == domain.PaymentCard {
		return s.payByCard(ctx, token, cartID, shipping, returnURL)
	}
	return s.payCash(ctx, token, cartID, shipping)
}

func (s *CheckoutService) payByCard(ctx context.Context, token, cartID string, shipping domain.ShippingAddress, returnURL string) (*Result, error) {
	if returnURL == "" {
		returnURL = s.defaultReturnURL
	}

	session, err := s.orders.CreateCheckoutSession(ctx, token, cartID, shipping, returnURL)
	if err != nil {
		ordersPlaced.WithLabelValues(string(domain.PaymentCard), "error").Inc()
		s.logger.ErrorContext(ctx, "failed to create checkout session",
			slog.String("cart_id", cartID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if session.URL == "" {
		ordersPlaced.WithLabelValues(string(domain.PaymentCard), "error").Inc()
		return nil, apperrors.ServiceUnavailable("Failed to create payment session")
	}

	ordersPlaced.WithLabelValues(string(domain.PaymentCard), "redirect").Inc()
	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("cart_id", cartID),
		slog.String("session_id", session.ID),
	)
	return &Result{Method: domain.PaymentCard, RedirectURL: session.URL}, nil
}

func (s *CheckoutService) payCash(ctx context.Context, token, cartID string, shipping domain.ShippingAddress) (*Result, error) {
	order, err := s.orders.CreateCashOrder(ctx, token, cartID, shipping)
	if err != nil {
		ordersPlaced.WithLabelValues(string(domain.PaymentCash), "error").Inc()
		s.logger.ErrorContext(ctx, "failed to create cash order",
			slog.String("cart_id", cartID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	ordersPlaced.WithLabelValues(string(domain.PaymentCash), "placed").Inc()
	s.logger.InfoContext(ctx, "cash order placed",
		slog.String("cart_id", cartID),
		slog.String("order_id", order.ID),
	)

	if err := s.history.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh orders after checkout", slog.String("error", err.Error()))
	}
	if err := s.cart.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to reload cart after checkout", slog.String("error", err.Error()))
	}
	return &Result{Method: domain.PaymentCash, Order: order}, nil
}

func isBlank(id string) bool {
	return id == "" || id == "undefined" || id == "null"
}
