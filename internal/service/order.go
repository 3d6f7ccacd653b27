package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/repository"
	"github.com/marianotorresleyva/storefront/pkg/database"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

// OrderService places and reads orders. Placement runs as a single
// serializable transaction over the inventory store and the order repository,
// so an order either fully commits (header, lines, stock decrements) or leaves
// no trace.
type OrderService struct {
	db        database.DBTX
	inventory repository.InventoryStore
	orders    repository.OrderRepository
	logger    *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(db database.DBTX, inventory repository.InventoryStore, orders repository.OrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{
		db:        db,
		inventory: inventory,
		orders:    orders,
		logger:    logger,
	}
}

// PlaceOrder atomically validates stock, writes the order header and lines,
// and decrements inventory for every requested line.
//
// Error taxonomy:
//   - a malformed request fails with ErrInvalidRequest before any storage access
//   - a product that is missing or lacks stock fails with ErrInsufficientStock
//     and rolls back everything
//   - any storage-level failure (connectivity, serialization conflict) maps to
//     ErrStorageFailure; the transaction is rolled back and the caller may
//     safely retry the whole call
func (s *OrderService) PlaceOrder(ctx context.Context, clientID int64, lines []domain.PurchaseLine) (*domain.Order, error) {
	if err := validatePurchase(clientID, lines); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, apperrors.StorageFailure(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inventory := s.inventory.WithTx(tx)
	orders := s.orders.WithTx(tx)

	// Check every line's stock before writing anything, so a multi-line order
	// short of stock on its last line never produces partial writes.
	for _, line := range lines {
		available, err := inventory.GetAvailableQuantity(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.InsufficientStock(line.ProductID)
			}
			return nil, apperrors.StorageFailure(err)
		}
		if available < line.Quantity {
			return nil, apperrors.InsufficientStock(line.ProductID)
		}
	}

	total := domain.PurchaseTotal(lines)

	orderID, err := orders.InsertOrder(ctx, clientID, total)
	if err != nil {
		return nil, apperrors.StorageFailure(err)
	}

	order := &domain.Order{
		ID:       orderID,
		ClientID: clientID,
		Total:    total,
		Lines:    make([]domain.OrderLine, 0, len(lines)),
	}

	for _, line := range lines {
		orderLine := domain.OrderLine{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
		}
		if err := orders.InsertLine(ctx, &orderLine); err != nil {
			return nil, apperrors.StorageFailure(err)
		}

		if err := inventory.DecrementQuantity(ctx, line.ProductID, line.Quantity); err != nil {
			// Concurrent placements can exhaust stock between the check and
			// the guarded decrement.
			if errors.Is(err, apperrors.ErrInsufficientStock) {
				return nil, err
			}
			return nil, apperrors.StorageFailure(err)
		}

		order.Lines = append(order.Lines, orderLine)
	}

	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			s.logger.WarnContext(ctx, "order placement serialization conflict",
				slog.Int64("client_id", clientID),
			)
		}
		return nil, apperrors.StorageFailure(fmt.Errorf("commit transaction: %w", err))
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.Int64("order_id", orderID),
		slog.Int64("client_id", clientID),
		slog.String("total", total.StringFixed(2)),
		slog.Int("lines", len(lines)),
	)

	return order, nil
}

// GetOrder retrieves an order with its lines.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListOrders returns a page of a client's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, clientID int64, page, perPage int) ([]domain.Order, int, error) {
	if clientID <= 0 {
		return nil, 0, apperrors.InvalidRequest("client id must be positive")
	}

	orders, total, err := s.orders.ListByClient(ctx, clientID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// validatePurchase rejects malformed placement requests before any storage
// access, so invalid input never opens a transaction.
func validatePurchase(clientID int64, lines []domain.PurchaseLine) error {
	if clientID <= 0 {
		return apperrors.InvalidRequest("client id must be positive")
	}
	if len(lines) == 0 {
		return apperrors.InvalidRequest("order must contain at least one line")
	}
	for i, line := range lines {
		if line.ProductID <= 0 {
			return apperrors.InvalidRequest(fmt.Sprintf("line %d: product id must be positive", i))
		}
		if line.Quantity <= 0 {
			return apperrors.InvalidRequest(fmt.Sprintf("line %d: quantity must be positive", i))
		}
		if line.UnitPrice.IsNegative() {
			return apperrors.InvalidRequest(fmt.Sprintf("line %d: unit price must not be negative", i))
		}
	}
	return nil
}

// isSerializationFailure reports whether err is a PostgreSQL serialization
// failure (SQLSTATE 40001), raised when concurrent serializable transactions
// conflict.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}
