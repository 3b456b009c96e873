// Package http is the local JSON API through which a presentation layer
// drives the shopper's session and stores.
package http

import (
	"context"

	"github.com/No25ha/Market/internal/checkout"
	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/pagination"
)

// SessionService signs the shopper in and out and edits their account.
type SessionService interface {
	Snapshot() domain.Session
	SignIn(ctx context.Context, in domain.SignInInput) (domain.Session, error)
	SignUp(ctx context.Context, in domain.SignUpInput) (domain.Session, error)
	Logout(ctx context.Context) domain.Session
	SaveProfile(ctx context.Context, in domain.ProfileUpdate) (domain.Session, error)
	ChangePassword(ctx context.Context, in domain.PasswordChange) (domain.Session, error)
}

// PasswordResetter runs the signed-out password reset flow.
type PasswordResetter interface {
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, code string) error
	ResetPassword(ctx context.Context, email, newPassword string) (*domain.AuthResponse, error)
}

// Catalog reads products, categories, subcategories and brands.
type Catalog interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) (pagination.Result[domain.Product], error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListSubCategories(ctx context.Context) ([]domain.SubCategory, error)
	ListSubCategoriesByCategory(ctx context.Context, categoryID string) ([]domain.SubCategory, error)
	GetSubCategory(ctx context.Context, id string) (*domain.SubCategory, error)
	ListBrands(ctx context.Context, limit int, keyword string) ([]domain.Brand, error)
	GetBrand(ctx context.Context, id string) (*domain.Brand, error)
}

// storeState is implemented by every session-scoped store.
type storeState interface {
	Loading() bool
	Err() string
}

// CartStore is the shopper's cart.
type CartStore interface {
	storeState
	Refresh(ctx context.Context) error
	AddToCart(ctx context.Context, productID string) error
	RemoveFromCart(ctx context.Context, productID string) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Clear(ctx context.Context) error
	ApplyCoupon(ctx context.Context, code string) error
	Snapshot() domain.Cart
}

// WishlistStore is the shopper's wishlist.
type WishlistStore interface {
	storeState
	Refresh(ctx context.Context) error
	Add(ctx context.Context, productID string) error
	Remove(ctx context.Context, id string) error
	Snapshot() []domain.WishlistItem
}

// AddressStore is the shopper's address book.
type AddressStore interface {
	storeState
	Refresh(ctx context.Context) error
	Add(ctx context.Context, in domain.AddressInput) error
	Remove(ctx context.Context, id string) error
	Select(id string) error
	Snapshot() domain.AddressBook
}

// OrderStore is the shopper's order history.
type OrderStore interface {
	storeState
	Refresh(ctx context.Context) error
	Snapshot() []domain.Order
}

// Checkout places orders.
type Checkout interface {
	PlaceOrder(ctx context.Context, method domain.PaymentMethod, returnURL string) (*checkout.Result, error)
}

// stateView is the loading flag and last error message of a store.
type stateView struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

func stateOf(s storeState) stateView {
	return stateView{Loading: s.Loading(), Error: s.Err()}
}

type messageResponse struct {
	Message string `json:"message"`
}
