package domain

import "github.com/shopspring/decimal"

// Product is a catalog item. AvailableQuantity is never negative; the order
// placement transaction is the only writer that decrements it.
type Product struct {
	ID                int64           `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Company           string          `json:"company"`
	ShortDescription  string          `json:"short_description,omitempty"`
	LongDescription   string          `json:"long_description,omitempty"`
	ImageURL          string          `json:"image_url,omitempty"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	Rating            float64         `json:"rating"`
}

// HasStock reports whether the product can satisfy the requested quantity.
func (p *Product) HasStock(quantity int) bool {
	return p.AvailableQuantity >= quantity
}
