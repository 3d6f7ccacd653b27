package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/repository"
	"github.com/marianotorresleyva/storefront/pkg/database"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.Querier
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.Querier) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *OrderRepository) WithTx(tx pgx.Tx) repository.OrderRepository {
	return &OrderRepository{db: tx}
}

// InsertOrder inserts an order header and returns the generated identifier.
func (r *OrderRepository) InsertOrder(ctx context.Context, clientID int64, total decimal.Decimal) (int64, error) {
	query := `
		INSERT INTO orders (client_id, total)
		VALUES ($1, $2)
		RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query, clientID, total).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	return id, nil
}

// InsertLine inserts a single order line.
func (r *OrderRepository) InsertLine(ctx context.Context, line *domain.OrderLine) error {
	query := `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		line.OrderID,
		line.ProductID,
		line.Quantity,
		line.UnitPrice,
		line.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT id, client_id, total, created_at
		FROM orders
		WHERE id = $1`

	var o domain.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.ClientID,
		&o.Total,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	lines, err := r.loadLines(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[id]
	if o.Lines == nil {
		o.Lines = []domain.OrderLine{}
	}

	return &o, nil
}

// ListByClient returns a client's orders, newest first, with the total count.
func (r *OrderRepository) ListByClient(ctx context.Context, clientID int64, page, perPage int) ([]domain.Order, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	// count(*) OVER() folds the total count into the page query.
	query := `
		SELECT id, client_id, total, created_at,
			   count(*) OVER() AS total_count
		FROM orders
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, clientID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.ClientID,
			&o.Total,
			&o.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load lines for all orders in a single query to avoid N+1.
	if len(orders) > 0 {
		orderIDs := make([]int64, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		linesByOrder, err := r.loadLines(ctx, orderIDs)
		if err != nil {
			return nil, 0, err
		}

		for i := range orders {
			if lines, ok := linesByOrder[orders[i].ID]; ok {
				orders[i].Lines = lines
			} else {
				orders[i].Lines = []domain.OrderLine{}
			}
		}
	}

	return orders, totalCount, nil
}

// loadLines retrieves the lines of the given orders, grouped by order id.
func (r *OrderRepository) loadLines(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLine, error) {
	query := `
		SELECT order_id, product_id, quantity, unit_price, subtotal
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	linesByOrder := make(map[int64][]domain.OrderLine, len(orderIDs))
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.OrderID,
			&line.ProductID,
			&line.Quantity,
			&line.UnitPrice,
			&line.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		linesByOrder[line.OrderID] = append(linesByOrder[line.OrderID], line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order line rows: %w", err)
	}

	return linesByOrder, nil
}
