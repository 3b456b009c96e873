package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/No25ha/Market/internal/api"
	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testPolicy retries like production but never sleeps.
func testPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	p.Logger = testLogger()
	return p
}

type fakeSession struct {
	mu     sync.Mutex
	token  string
	user   *domain.User
	cartID string
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *fakeSession) RememberCartID(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartID = id
}

func (s *fakeSession) rememberedCartID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartID
}

type cartLine struct {
	productID string
	count     int
}

type failure struct {
	status  int
	message string
}

// upstream is an in-memory stand-in for the storefront REST API.
type upstream struct {
	mu        sync.Mutex
	calls     map[string]int
	failures  map[string][]failure
	cart      []cartLine
	wishlist  []string
	addresses []domain.Address
	orders    []domain.Order
	nextID    int
}

func newUpstream(t *testing.T) (*upstream, *httptest.Server) {
	t.Helper()
	u := &upstream{calls: map[string]int{}, failures: map[string][]failure{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/cart", u.getCart)
	mux.HandleFunc("POST /api/v2/cart", u.addToCart)
	mux.HandleFunc("DELETE /api/v2/cart", u.clearCart)
	mux.HandleFunc("PUT /api/v2/cart/applyCoupon", u.applyCoupon)
	mux.HandleFunc("PUT /api/v2/cart/{id}", u.updateLine)
	mux.HandleFunc("DELETE /api/v2/cart/{id}", u.removeLine)
	mux.HandleFunc("GET /api/v1/wishlist", u.getWishlist)
	mux.HandleFunc("POST /api/v1/wishlist", u.addToWishlist)
	mux.HandleFunc("DELETE /api/v1/wishlist/{id}", u.removeFromWishlist)
	mux.HandleFunc("GET /api/v1/addresses", u.getAddresses)
	mux.HandleFunc("POST /api/v1/addresses", u.addAddress)
	mux.HandleFunc("DELETE /api/v1/addresses/{id}", u.removeAddress)
	mux.HandleFunc("GET /api/v1/orders", u.getOrders)
	mux.HandleFunc("GET /api/v1/orders/user/{id}", u.getOrders)

	srv := httptest.NewServer(u.record(mux))
	t.Cleanup(srv.Close)
	return u, srv
}

func (u *upstream) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		u.mu.Lock()
		u.calls[key]++
		var f *failure
		if queued := u.failures[key]; len(queued) > 0 {
			f = &queued[0]
			u.failures[key] = queued[1:]
		}
		u.mu.Unlock()

		if f != nil {
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// fail queues failures for the next calls to key ("METHOD /path").
func (u *upstream) fail(key string, status int, message string, times int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for range times {
		u.failures[key] = append(u.failures[key], failure{status: status, message: message})
	}
}

func (u *upstream) count(key string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request) map[string]any {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body
}

func (u *upstream) getCart(w http.ResponseWriter, _ *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()

	products := make([]map[string]any, 0, len(u.cart))
	total := 0
	for _, l := range u.cart {
		products = append(products, map[string]any{
			"_id":     "line-" + l.productID,
			"count":   l.count,
			"price":   10,
			"product": map[string]any{"_id": l.productID, "title": "Product " + l.productID},
		})
		total += 10 * l.count
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "success",
		"numOfCartItems": len(u.cart),
		"cartId":         "cart-1",
		"data": map[string]any{
			"_id":            "cart-1",
			"products":       products,
			"totalCartPrice": total,
		},
	})
}

func (u *upstream) addToCart(w http.ResponseWriter, r *http.Request) {
	id, _ := decodeBody(r)["productId"].(string)
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.cart {
		if u.cart[i].productID == id {
			u.cart[i].count++
			writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
			return
		}
	}
	u.cart = append(u.cart, cartLine{productID: id, count: 1})
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (u *upstream) updateLine(w http.ResponseWriter, r *http.Request) {
	count, _ := decodeBody(r)["count"].(float64)
	id := r.PathValue("id")
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := range u.cart {
		if u.cart[i].productID == id {
			u.cart[i].count = int(count)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (u *upstream) removeLine(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	u.mu.Lock()
	defer u.mu.Unlock()
	kept := u.cart[:0]
	for _, l := range u.cart {
		if l.productID != id {
			kept = append(kept, l)
		}
	}
	u.cart = kept
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (u *upstream) clearCart(w http.ResponseWriter, _ *http.Request) {
	u.mu.Lock()
	u.cart = nil
	u.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "success"})
}

func (u *upstream) applyCoupon(w http.ResponseWriter, r *http.Request) {
	if code, _ := decodeBody(r)["couponName"].(string); code != "SAVE10" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Coupon not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (u *upstream) getWishlist(w http.ResponseWriter, _ *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	items := make([]map[string]any, 0, len(u.wishlist))
	for _, id := range u.wishlist {
		items = append(items, map[string]any{"_id": id, "title": "Product " + id, "price": 10})
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": items})
}

func (u *upstream) addToWishlist(w http.ResponseWriter, r *http.Request) {
	id, _ := decodeBody(r)["productId"].(string)
	u.mu.Lock()
	u.wishlist = append(u.wishlist, id)
	u.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (u *upstream) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	u.mu.Lock()
	defer u.mu.Unlock()
	kept := u.wishlist[:0]
	for _, v := range u.wishlist {
		if v != id {
			kept = append(kept, v)
		}
	}
	u.wishlist = kept
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (u *upstream) getAddresses(w http.ResponseWriter, _ *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": append([]domain.Address{}, u.addresses...)})
}

func (u *upstream) addAddress(w http.ResponseWriter, r *http.Request) {
	var in domain.AddressInput
	_ = json.NewDecoder(r.Body).Decode(&in)
	u.mu.Lock()
	u.nextID++
	u.addresses = append(u.addresses, domain.Address{
		ID:      fmt.Sprintf("addr-%d", u.nextID),
		Label:   in.Label,
		Details: in.Details,
		Phone:   in.Phone,
		City:    in.City,
	})
	u.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (u *upstream) removeAddress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	u.mu.Lock()
	defer u.mu.Unlock()
	kept := u.addresses[:0]
	for _, a := range u.addresses {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	u.addresses = kept
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (u *upstream) getOrders(w http.ResponseWriter, _ *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]domain.Order{}, u.orders...))
}

// services wires the real API services to srv.
type services struct {
	cart      *api.CartService
	wishlist  *api.WishlistService
	addresses *api.AddressService
	orders    *api.OrderService
}

func newServices(t *testing.T, srv *httptest.Server) services {
	t.Helper()
	cfg := httpclient.DefaultConfig(srv.URL)
	cfg.Timeout = 5 * time.Second
	cfg.RateLimit = 0
	client, err := httpclient.New(cfg, httpclient.WithLogger(testLogger()))
	require.NoError(t, err)

	return services{
		cart:      api.NewCartService(client, testLogger()),
		wishlist:  api.NewWishlistService(client, testLogger()),
		addresses: api.NewAddressService(client, testLogger()),
		orders:    api.NewOrderService(client, testLogger()),
	}
}
