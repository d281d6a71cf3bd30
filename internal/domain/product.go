package domain

import "time"

// Product represents a catalog product. Instances are immutable once loaded;
// cart lines hold snapshots, never live references.
type Product struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Brand           string    `json:"brand"`
	Price           int64     `json:"price"` // minor currency units
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	Images          []string  `json:"images"`
	Sizes           []float64 `json:"sizes"`
	Colors          []string  `json:"colors"` // hex values
	Stock           int       `json:"stock"`
	DiscountPercent int       `json:"discount_percent"`
	IsNew           bool      `json:"is_new"`
	Rating          float64   `json:"rating"`
	ReviewCount     int       `json:"review_count"`
	CreatedAt       time.Time `json:"created_at"` // zero value sorts as oldest
}

// OnSale reports whether the product carries a discount.
func (p *Product) OnSale() bool {
	return p.DiscountPercent > 0
}

// DiscountedPrice returns the unit price with the product's own discount
// applied, in minor units. Integer arithmetic; no rounding beyond the
// implicit truncation to whole minor units.
func (p *Product) DiscountedPrice() int64 {
	return p.Price * int64(100-p.DiscountPercent) / 100
}

// HasSize reports whether the given size is offered for this product.
func (p *Product) HasSize(size float64) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// Snapshot returns a deep copy of the product. Cart lines store snapshots so
// later catalog mutations cannot alias into persisted cart state.
func (p Product) Snapshot() Product {
	cp := p
	cp.Images = append([]string(nil), p.Images...)
	cp.Sizes = append([]float64(nil), p.Sizes...)
	cp.Colors = append([]string(nil), p.Colors...)
	return cp
}
