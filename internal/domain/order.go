package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how an order is paid.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// Order is a placed order. Orders are read-only on the client.
type Order struct {
	ID                 string           `json:"_id"`
	User               *OrderUser       `json:"user,omitempty"`
	Items              []OrderItem      `json:"cartItems"`
	Total              decimal.Decimal  `json:"totalOrderPrice"`
	TotalAfterDiscount *decimal.Decimal `json:"totalPriceAfterDiscount,omitempty"`
	PaymentMethod      string           `json:"paymentMethodType"`
	ShippingAddress    *ShippingAddress `json:"shippingAddress,omitempty"`
	Status             string           `json:"orderStatus,omitempty"`
	IsPaid             bool             `json:"isPaid"`
	IsDelivered        bool             `json:"isDelivered"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// OrderUser is the buyer as embedded in an order.
type OrderUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID       string          `json:"_id"`
	Quantity int             `json:"count"`
	Price    decimal.Decimal `json:"price"`
	Product  ProductRef      `json:"product"`
}

// CheckoutSession is the hosted payment page created for a card order.
type CheckoutSession struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}
