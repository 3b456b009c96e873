package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
)

func validAddress() domain.AddressInput {
	return domain.AddressInput{
		Label:   "Home",
		Details: "12 Nile St",
		Phone:   "01012345678",
		City:    "Cairo",
	}
}

func TestAddressHandler_List(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.addresses.book = domain.AddressBook{
		Items:      []domain.Address{{ID: "a1", Label: "Home"}, {ID: "a2", Label: "Work"}},
		SelectedID: "a1",
	}
	f.addresses.loading = true

	rec := f.do(http.MethodGet, "/api/v1/addresses", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got AddressBookResponse
	decodeData(t, rec, &got)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "a1", got.SelectedID)
	assert.True(t, got.Loading)
}

func TestAddressHandler_Add(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	in := validAddress()
	f.addresses.On("Add", anyCtx, in).Return(nil).Once()

	rec := f.do(http.MethodPost, "/api/v1/addresses", in)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAddressHandler_Add_Invalid(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	in := validAddress()
	in.City = ""
	in.Phone = "call me"

	rec := f.do(http.MethodPost, "/api/v1/addresses", in)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeError(t, rec).Fields
	assert.Equal(t, "is required", fields["city"])
	assert.Equal(t, "must be a valid phone number", fields["phone"])
}

func TestAddressHandler_Select(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.addresses.On("Select", "a2").Return(nil).Once()
	f.addresses.On("Select", "zz").Return(apperrors.NotFound("address", "zz")).Once()

	rec := f.do(http.MethodPut, "/api/v1/addresses/selected", SelectAddressRequest{ID: "a2"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPut, "/api/v1/addresses/selected", SelectAddressRequest{ID: "zz"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestAddressHandler_RemoveAndRefresh(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.addresses.On("Remove", anyCtx, "a1").Return(nil).Once()
	f.addresses.On("Refresh", anyCtx).Return(nil).Once()

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/v1/addresses/a1", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/addresses/refresh", nil).Code)
}

func TestWishlistHandler_List(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.wishlist.items = []domain.WishlistItem{{ID: "w1", ProductID: "p1"}}

	rec := f.do(http.MethodGet, "/api/v1/wishlist", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got WishlistResponse
	decodeData(t, rec, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "w1", got.Items[0].ID)
}

func TestWishlistHandler_AddRemove(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.wishlist.On("Add", anyCtx, "p1").Return(nil).Once()
	f.wishlist.On("Remove", anyCtx, "p1").Return(nil).Once()
	f.wishlist.On("Refresh", anyCtx).Return(nil).Once()

	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/wishlist/items", AddItemRequest{ProductID: "p1"}).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/v1/wishlist/items/p1", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/v1/wishlist/refresh", nil).Code)
}

func TestWishlistHandler_Add_SignedOut(t *testing.T) {
	f := newFixture(t, RouterConfig{})
	f.wishlist.On("Add", anyCtx, "p1").Return(apperrors.Unauthorized("Please login to use the wishlist")).Once()

	rec := f.do(http.MethodPost, "/api/v1/wishlist/items", AddItemRequest{ProductID: "p1"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
