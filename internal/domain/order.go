package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a persisted purchase. It is created exactly once per successful
// placement and never mutated afterwards.
type Order struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"client_id"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Lines     []OrderLine     `json:"lines,omitempty"`
}

// OrderLine is one product/quantity/price entry within an order. The unit
// price is the price at time of purchase; the subtotal is always the exact
// product of quantity and unit price on the same line.
type OrderLine struct {
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PurchaseLine is one requested line of a purchase. It exists only for the
// duration of a single placement call and is not persisted.
type PurchaseLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns quantity × unit price.
func (l PurchaseLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PurchaseTotal sums the subtotals of all lines, rounded to two decimal
// places (currency granularity).
func PurchaseTotal(lines []PurchaseLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}
