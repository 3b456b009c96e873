package domain

import "github.com/shopspring/decimal"

// WishlistItem is a saved product. Either ID or ProductID identifies it.
type WishlistItem struct {
	ID                 string           `json:"_id"`
	ProductID          string           `json:"productId,omitempty"`
	Title              string           `json:"title"`
	Description        string           `json:"description,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	PriceAfterDiscount *decimal.Decimal `json:"priceAfterDiscount,omitempty"`
	ImageCover         string           `json:"imageCover,omitempty"`
	Images             []string         `json:"images,omitempty"`
	RatingsAverage     float64          `json:"ratingsAverage"`
	RatingsQuantity    int              `json:"ratingsQuantity"`
	Category           *Ref             `json:"category,omitempty"`
	Brand              *Ref             `json:"brand,omitempty"`
}

// Matches reports whether key is this item's entry id or product id.
func (w WishlistItem) Matches(key string) bool {
	return key != "" && (w.ID == key || w.ProductID == key)
}
