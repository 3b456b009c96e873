package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httputil"
	"github.com/No25ha/Market/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	wishlist WishlistStore
	logger   *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(wishlist WishlistStore, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist, logger: logger}
}

// WishlistResponse is the wishlist plus the store's loading and error state.
type WishlistResponse struct {
	Items []domain.WishlistItem `json:"items"`
	stateView
}

// List handles GET /api/v1/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeWishlist(w)
}

// Refresh handles POST /api/v1/wishlist/refresh
func (h *WishlistHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.wishlist.Refresh(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeWishlist(w)
}

// Add handles POST /api/v1/wishlist/items
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.wishlist.Add(r.Context(), req.ProductID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeWishlist(w)
}

// Remove handles DELETE /api/v1/wishlist/items/{id}. The id may be the
// wishlist entry id or the product id.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.wishlist.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeWishlist(w)
}

func (h *WishlistHandler) writeWishlist(w http.ResponseWriter) {
	httputil.WriteData(w, http.StatusOK, WishlistResponse{Items: h.wishlist.Snapshot(), stateView: stateOf(h.wishlist)})
}
