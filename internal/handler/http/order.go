package http

import (
	"log/slog"
	"net/http"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httputil"
	"github.com/No25ha/Market/pkg/validator"
)

// OrderHandler serves order history and checkout.
type OrderHandler struct {
	orders   OrderStore
	checkout Checkout
	logger   *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(orders OrderStore, checkout Checkout, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, checkout: checkout, logger: logger}
}

// CheckoutRequest chooses how to pay for the cart. ReturnURL is where the
// card payment page sends the shopper afterwards.
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash card"`
	ReturnURL     string `json:"returnUrl" validate:"omitempty,url"`
}

// OrdersResponse is the order history plus the store's loading and error
// state.
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
	stateView
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeOrders(w)
}

// Refresh handles POST /api/v1/orders/refresh
func (h *OrderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Refresh(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeOrders(w)
}

// Checkout handles POST /api/v1/checkout. Cash orders answer 201 with the
// order; card payments answer 200 with the payment page URL.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.checkout.PlaceOrder(r.Context(), domain.PaymentMethod(req.PaymentMethod), req.ReturnURL)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if result.Order != nil {
		status = http.StatusCreated
	}
	httputil.WriteData(w, status, result)
}

func (h *OrderHandler) writeOrders(w http.ResponseWriter) {
	httputil.WriteData(w, http.StatusOK, OrdersResponse{Orders: h.orders.Snapshot(), stateView: stateOf(h.orders)})
}
