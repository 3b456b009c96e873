package domain

// Address is a saved shipping address. Label is the shopper's name for it.
type Address struct {
	ID      string `json:"_id"`
	Label   string `json:"name"`
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

// AddressInput is the payload for creating an address.
type AddressInput struct {
	Label   string `json:"name" validate:"required,max=100"`
	Details string `json:"details" validate:"required,max=500"`
	Phone   string `json:"phone" validate:"required,e164|numeric"`
	City    string `json:"city" validate:"required,max=100"`
}

// ShippingAddress is the address block sent with an order.
type ShippingAddress struct {
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

// Shipping returns the order-facing view of the address.
func (a Address) Shipping() ShippingAddress {
	return ShippingAddress{Details: a.Details, Phone: a.Phone, City: a.City}
}

// AddressBook is the shopper's addresses plus the one chosen for checkout.
// When Items is non-empty SelectedID should name one of them; it is empty
// when nothing is selected.
type AddressBook struct {
	Items      []Address `json:"items"`
	SelectedID string    `json:"selectedId"`
}

// Find returns the address with id.
func (b *AddressBook) Find(id string) (Address, bool) {
	for _, a := range b.Items {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

// Selected returns the selected address, if any.
func (b *AddressBook) Selected() (Address, bool) {
	if b.SelectedID == "" {
		return Address{}, false
	}
	return b.Find(b.SelectedID)
}
