package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPurchaseLine_Subtotal(t *testing.T) {
	line := PurchaseLine{ProductID: 1, Quantity: 3, UnitPrice: d("10.50")}
	assert.True(t, line.Subtotal().Equal(d("31.50")), "subtotal = %s", line.Subtotal())
}

func TestPurchaseTotal(t *testing.T) {
	tests := []struct {
		name  string
		lines []PurchaseLine
		want  string
	}{
		{
			name:  "empty",
			lines: nil,
			want:  "0",
		},
		{
			name: "single line",
			lines: []PurchaseLine{
				{Quantity: 2, UnitPrice: d("10.50")},
			},
			want: "21.00",
		},
		{
			name: "multiple lines",
			lines: []PurchaseLine{
				{Quantity: 2, UnitPrice: d("10.50")},
				{Quantity: 1, UnitPrice: d("5.25")},
			},
			want: "26.25",
		},
		{
			name: "sub-cent prices round at the total",
			lines: []PurchaseLine{
				{Quantity: 3, UnitPrice: d("0.333")},
				{Quantity: 3, UnitPrice: d("0.333")},
			},
			want: "2.00",
		},
		{
			name: "rounds half up",
			lines: []PurchaseLine{
				{Quantity: 1, UnitPrice: d("1.005")},
			},
			want: "1.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PurchaseTotal(tt.lines)
			assert.True(t, got.Equal(d(tt.want)), "total = %s, want %s", got, tt.want)
		})
	}
}

func TestProduct_HasStock(t *testing.T) {
	p := Product{AvailableQuantity: 5}
	assert.True(t, p.HasStock(5))
	assert.True(t, p.HasStock(1))
	assert.False(t, p.HasStock(6))
}
