package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/No25ha/Market/pkg/slug"
)

// Ref is a lightweight reference to another catalog entity.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// Product is a catalog product.
type Product struct {
	ID                 string           `json:"_id"`
	Title              string           `json:"title"`
	Description        string           `json:"description,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	PriceAfterDiscount *decimal.Decimal `json:"priceAfterDiscount,omitempty"`
	ImageCover         string           `json:"imageCover,omitempty"`
	Images             []string         `json:"images,omitempty"`
	RatingsAverage     float64          `json:"ratingsAverage"`
	RatingsQuantity    int              `json:"ratingsQuantity"`
	Quantity           int              `json:"quantity"`
	Category           *Ref             `json:"category,omitempty"`
	Brand              *Ref             `json:"brand,omitempty"`
}

// EffectivePrice returns the discounted price when one is set.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.PriceAfterDiscount != nil {
		return *p.PriceAfterDiscount
	}
	return p.Price
}

// ProductRef is a product as embedded in cart and order lines. The upstream
// sends either a populated object or a bare id string.
type ProductRef struct {
	ID         string          `json:"_id"`
	Title      string          `json:"title,omitempty"`
	ImageCover string          `json:"imageCover,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Category   *Ref            `json:"category,omitempty"`
	Brand      *Ref            `json:"brand,omitempty"`
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = ProductRef{ID: id}
		return nil
	}

	type plain ProductRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ProductRef(p)
	return nil
}

// Category is a top-level product category.
type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// SubCategory belongs to exactly one Category.
type SubCategory struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	CategoryID string `json:"category"`
}

// Brand is a product brand.
type Brand struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// FillSlug derives Slug from Name when the upstream sent none.
func (c *Category) FillSlug() { c.Slug = slugOr(c.Slug, c.Name) }

// FillSlug derives Slug from Name when the upstream sent none.
func (s *SubCategory) FillSlug() { s.Slug = slugOr(s.Slug, s.Name) }

// FillSlug derives Slug from Name when the upstream sent none.
func (b *Brand) FillSlug() { b.Slug = slugOr(b.Slug, b.Name) }

func slugOr(current, name string) string {
	if current != "" {
		return current
	}
	return slug.Generate(name)
}

// ProductFilter narrows a product listing. Empty fields are not sent.
type ProductFilter struct {
	CategoryID    string
	SubCategoryID string
	BrandID       string
	Keyword       string
	Sort          string
	Limit         int
	Page          int
}
