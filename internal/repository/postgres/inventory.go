package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marianotorresleyva/storefront/internal/repository"
	"github.com/marianotorresleyva/storefront/pkg/database"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

// InventoryStore implements repository.InventoryStore against the products table.
type InventoryStore struct {
	db database.Querier
}

// NewInventoryStore creates a new PostgreSQL-backed inventory store.
func NewInventoryStore(db database.Querier) *InventoryStore {
	return &InventoryStore{db: db}
}

// WithTx returns a copy of the store bound to an open transaction.
func (s *InventoryStore) WithTx(tx pgx.Tx) repository.InventoryStore {
	return &InventoryStore{db: tx}
}

// GetAvailableQuantity returns the current stock count for a product.
func (s *InventoryStore) GetAvailableQuantity(ctx context.Context, productID int64) (int, error) {
	query := `SELECT available_quantity FROM products WHERE id = $1`

	var quantity int
	err := s.db.QueryRow(ctx, query, productID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("get available quantity: %w", err)
	}

	return quantity, nil
}

// DecrementQuantity subtracts amount from the product's stock. The WHERE
// guard keeps stock from ever going negative: if the row no longer holds
// enough stock, zero rows are updated and the caller gets
// ErrInsufficientStock instead of a mutated row.
func (s *InventoryStore) DecrementQuantity(ctx context.Context, productID int64, amount int) error {
	query := `
		UPDATE products
		SET available_quantity = available_quantity - $1
		WHERE id = $2 AND available_quantity >= $1`

	ct, err := s.db.Exec(ctx, query, amount, productID)
	if err != nil {
		return fmt.Errorf("decrement product quantity: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.InsufficientStock(productID)
	}

	return nil
}
