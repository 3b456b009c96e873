package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httputil"
	"github.com/No25ha/Market/pkg/validator"
)

// AddressHandler handles HTTP requests for the address book.
type AddressHandler struct {
	addresses AddressStore
	logger    *slog.Logger
}

// NewAddressHandler creates a new address HTTP handler.
func NewAddressHandler(addresses AddressStore, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{addresses: addresses, logger: logger}
}

// SelectAddressRequest picks the delivery address for checkout.
type SelectAddressRequest struct {
	ID string `json:"id" validate:"required"`
}

// AddressBookResponse is the address book plus the store's loading and
// error state.
type AddressBookResponse struct {
	domain.AddressBook
	stateView
}

// List handles GET /api/v1/addresses
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeBook(w, http.StatusOK)
}

// Refresh handles POST /api/v1/addresses/refresh
func (h *AddressHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.addresses.Refresh(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeBook(w, http.StatusOK)
}

// Add handles POST /api/v1/addresses
func (h *AddressHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req domain.AddressInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.addresses.Add(r.Context(), req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeBook(w, http.StatusCreated)
}

// Remove handles DELETE /api/v1/addresses/{id}
func (h *AddressHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.addresses.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeBook(w, http.StatusOK)
}

// Select handles PUT /api/v1/addresses/selected
func (h *AddressHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectAddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.addresses.Select(req.ID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeBook(w, http.StatusOK)
}

func (h *AddressHandler) writeBook(w http.ResponseWriter, status int) {
	httputil.WriteData(w, status, AddressBookResponse{AddressBook: h.addresses.Snapshot(), stateView: stateOf(h.addresses)})
}
