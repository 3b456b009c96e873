package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/No25ha/Market/internal/checkout"
	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/pagination"
)

// ============================================================================
// Session
// ============================================================================

type mockSession struct {
	mock.Mock
}

func (m *mockSession) Snapshot() domain.Session {
	return m.Called().Get(0).(domain.Session)
}

func (m *mockSession) SignIn(ctx context.Context, in domain.SignInInput) (domain.Session, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *mockSession) SignUp(ctx context.Context, in domain.SignUpInput) (domain.Session, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *mockSession) Logout(ctx context.Context) domain.Session {
	return m.Called(ctx).Get(0).(domain.Session)
}

func (m *mockSession) SaveProfile(ctx context.Context, in domain.ProfileUpdate) (domain.Session, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *mockSession) ChangePassword(ctx context.Context, in domain.PasswordChange) (domain.Session, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Session), args.Error(1)
}

type mockPasswords struct {
	mock.Mock
}

func (m *mockPasswords) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockPasswords) VerifyResetCode(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *mockPasswords) ResetPassword(ctx context.Context, email, newPassword string) (*domain.AuthResponse, error) {
	args := m.Called(ctx, email, newPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse), args.Error(1)
}

// ============================================================================
// Catalog
// ============================================================================

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListProducts(ctx context.Context, filter domain.ProductFilter) (pagination.Result[domain.Product], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(pagination.Result[domain.Product]), args.Error(1)
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCatalog) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCatalog) ListSubCategories(ctx context.Context) ([]domain.SubCategory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.SubCategory), args.Error(1)
}

func (m *mockCatalog) ListSubCategoriesByCategory(ctx context.Context, categoryID string) ([]domain.SubCategory, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]domain.SubCategory), args.Error(1)
}

func (m *mockCatalog) GetSubCategory(ctx context.Context, id string) (*domain.SubCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubCategory), args.Error(1)
}

func (m *mockCatalog) ListBrands(ctx context.Context, limit int, keyword string) ([]domain.Brand, error) {
	args := m.Called(ctx, limit, keyword)
	return args.Get(0).([]domain.Brand), args.Error(1)
}

func (m *mockCatalog) GetBrand(ctx context.Context, id string) (*domain.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Brand), args.Error(1)
}

// ============================================================================
// Stores
// ============================================================================

// mockState answers Loading and Err for every store mock.
type mockState struct {
	loading bool
	err     string
}

func (s *mockState) Loading() bool { return s.loading }

func (s *mockState) Err() string { return s.err }

type mockCart struct {
	mock.Mock
	mockState
	cart domain.Cart
}

func (m *mockCart) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCart) AddToCart(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *mockCart) RemoveFromCart(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *mockCart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	return m.Called(ctx, productID, quantity).Error(0)
}

func (m *mockCart) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCart) ApplyCoupon(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *mockCart) Snapshot() domain.Cart { return m.cart }

type mockWishlist struct {
	mock.Mock
	mockState
	items []domain.WishlistItem
}

func (m *mockWishlist) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockWishlist) Add(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *mockWishlist) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockWishlist) Snapshot() []domain.WishlistItem { return m.items }

type mockAddresses struct {
	mock.Mock
	mockState
	book domain.AddressBook
}

func (m *mockAddresses) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockAddresses) Add(ctx context.Context, in domain.AddressInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockAddresses) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAddresses) Select(id string) error {
	return m.Called(id).Error(0)
}

func (m *mockAddresses) Snapshot() domain.AddressBook { return m.book }

type mockOrders struct {
	mock.Mock
	mockState
	orders []domain.Order
}

func (m *mockOrders) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockOrders) Snapshot() []domain.Order { return m.orders }

type mockCheckout struct {
	mock.Mock
}

func (m *mockCheckout) PlaceOrder(ctx context.Context, method domain.PaymentMethod, returnURL string) (*checkout.Result, error) {
	args := m.Called(ctx, method, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Result), args.Error(1)
}
