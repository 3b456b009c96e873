package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/internal/session"
	"github.com/No25ha/Market/pkg/kvstore"
)

func newTestStorefront(t *testing.T) (*Storefront, *session.Store, *upstream) {
	t.Helper()
	up, srv := newUpstream(t)
	svc := newServices(t, srv)
	sess := session.New(nil, kvstore.NewMemory(), nil, testLogger())

	sf := NewStorefront(
		NewCart(svc.cart, sess, testPolicy(), testLogger()),
		NewWishlist(svc.wishlist, sess, testPolicy(), testLogger()),
		NewAddressBook(svc.addresses, sess, testPolicy(), testLogger()),
		NewOrders(svc.orders, sess, testPolicy(), testLogger()),
		sess.Changes(),
		testLogger(),
	)
	t.Cleanup(sf.Close)
	return sf, sess, up
}

func seed(up *upstream) {
	up.mu.Lock()
	defer up.mu.Unlock()
	up.cart = []cartLine{{productID: "p1", count: 2}}
	up.wishlist = []string{"p2"}
	up.addresses = []domain.Address{{ID: "a1", City: "Cairo"}}
	up.orders = []domain.Order{{ID: "o1"}}
}

func TestStorefront_LoginReloadsEverything(t *testing.T) {
	sf, sess, up := newTestStorefront(t)
	seed(up)

	sess.Login(context.Background(), "tok", &domain.Identity{ID: "u1", Name: "Al"})
	sf.Wait()

	assert.Equal(t, 2, sf.Cart.ItemQuantity("p1"))
	assert.True(t, sf.Wishlist.IsInWishlist("p2"))
	assert.Equal(t, "a1", sf.Addresses.Snapshot().SelectedID)
	assert.Len(t, sf.Orders.Snapshot(), 1)
	assert.Equal(t, 1, up.count("GET /api/v1/orders/user/u1"))
	assert.Equal(t, "cart-1", sess.CachedCartID(context.Background()))
}

func TestStorefront_LogoutClearsAllStores(t *testing.T) {
	sf, sess, up := newTestStorefront(t)
	seed(up)
	ctx := context.Background()

	sess.Login(ctx, "tok", &domain.Identity{ID: "u1"})
	sf.Wait()
	require.True(t, sf.Cart.IsInCart("p1"))

	sess.Logout(ctx)

	assert.Empty(t, sf.Cart.Snapshot().Items)
	assert.Empty(t, sf.Cart.CartID())
	assert.Empty(t, sf.Wishlist.Snapshot())
	assert.Empty(t, sf.Addresses.Snapshot().Items)
	assert.Empty(t, sf.Addresses.Snapshot().SelectedID)
	assert.Empty(t, sf.Orders.Snapshot())
}

func TestStorefront_ProfileUpdateDoesNotReload(t *testing.T) {
	sf, sess, up := newTestStorefront(t)
	seed(up)
	ctx := context.Background()

	sess.Login(ctx, "tok", &domain.Identity{ID: "u1", Name: "Al"})
	sf.Wait()
	loads := up.count("GET /api/v2/cart")

	name := "Alice"
	sess.UpdateProfile(ctx, domain.ProfilePatch{Name: &name})
	sf.Wait()

	assert.Equal(t, loads, up.count("GET /api/v2/cart"))
	assert.True(t, sf.Cart.IsInCart("p1"))
}

func TestStorefront_Reload(t *testing.T) {
	sf, sess, up := newTestStorefront(t)
	ctx := context.Background()
	sess.Login(ctx, "tok", &domain.Identity{ID: "u1"})
	sf.Wait()
	assert.Empty(t, sf.Cart.Snapshot().Items)

	seed(up)
	require.NoError(t, sf.Reload(ctx))
	assert.True(t, sf.Cart.IsInCart("p1"))
	assert.True(t, sf.Wishlist.IsInWishlist("p2"))
}
