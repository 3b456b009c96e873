package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the shopper's server-side cart.
type Cart struct {
	ID                    string           `json:"_id"`
	OwnerID               string           `json:"cartOwner,omitempty"`
	Items                 []CartItem       `json:"products"`
	Subtotal              decimal.Decimal  `json:"totalCartPrice"`
	SubtotalAfterDiscount *decimal.Decimal `json:"totalPriceAfterDiscount,omitempty"`
	NumItems              int              `json:"numOfCartItems"`
	CreatedAt             time.Time        `json:"createdAt,omitempty"`
	UpdatedAt             time.Time        `json:"updatedAt,omitempty"`
}

// CartItem is one line of a cart. Quantity is always at least 1.
type CartItem struct {
	ID        string          `json:"_id"`
	Product   ProductRef      `json:"product"`
	Quantity  int             `json:"count"`
	UnitPrice decimal.Decimal `json:"price"`
}

// LineTotal returns UnitPrice * Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Find returns the line holding productID.
func (c *Cart) Find(productID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// WithoutProduct returns a copy of the cart with productID's line removed.
func (c Cart) WithoutProduct(productID string) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Product.ID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
	return c
}

// Total returns the discounted subtotal when a coupon applies.
func (c *Cart) Total() decimal.Decimal {
	if c.SubtotalAfterDiscount != nil {
		return *c.SubtotalAfterDiscount
	}
	return c.Subtotal
}
