package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/repository/postgres"
	"github.com/marianotorresleyva/storefront/pkg/database"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newOrderTestFixture(t *testing.T) (*OrderService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)

	svc := NewOrderService(
		mock,
		postgres.NewInventoryStore(mock),
		postgres.NewOrderRepository(mock),
		newTestLogger(),
	)
	return svc, mock
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var serializableOpts = pgx.TxOptions{IsoLevel: pgx.Serializable}

// --- PlaceOrder ---

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	svc, mock := newOrderTestFixture(t)
	defer mock.Close()

	lines := []domain.PurchaseLine{
		{ProductID: 1, Quantity: 2, UnitPrice: price("10.50")},
		{ProductID: 2, Quantity: 1, UnitPrice: price("5.25")},
	}

	mock.ExpectBeginTx(serializableOpts)

	mock.ExpectQuery("SELECT available_quantity FROM products").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"available_quantity"}).AddRow(10))
	mock.ExpectQuery("SELECT available_quantity FROM products").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"available_quantity"}).AddRow(3))

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(42), price("26.25")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	mock.ExpectExec("INSERT INTO order_lines").
		WithArgs(int64(7), int64(1), 2, price("10.50"), price("21.00")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(2, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectExec("INSERT INTO order_lines").
		WithArgs(int64(7), int64(2), 1, price("5.25"), price("5.25")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(1, int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectCommit()

	order, err := svc.PlaceOrder(context.Background(), 42, lines)
	require.NoError(t, err)
	assert.Equal(t, int64(7), order.ID)
	assert.Equal(t, int64(42), order.ClientID)
	assert.True(t, order.Total.Equal(price("26.25")), "total = %s", order.Total)
	assert.Len(t, order.Lines, 2)
	assert.True(t, order.Lines[0].Subtotal.Equal(price("21.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_PlaceOrder_TotalRounding(t *testing.T) {
	svc, mock := newOrderTestFixture(t)
	defer mock.Close()

	// 3 × 0.333 = 0.999 per line; two lines sum to 1.998, rounded to 2.00.
	lines := []domain.PurchaseLine{
		{ProductID: 1, Quantity: 3, UnitPrice: price("0.333")},
		{ProductID: 2, Quantity: 3, UnitPrice: price("0.333")},
	}

	mock.ExpectBeginTx(serializableOpts)
	mock.ExpectQuery("SELECT available_quantity FROM products").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"available_quantity"}).AddRow(5))
	mock.ExpectQuery("SELECT available_quantity FROM products").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"available_quantity"}).AddRow(5))

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(1), price("2.00")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))

	for _, l := range lines {
		mock.ExpectExec("INSERT INTO order_lines").
			WithArgs(int64(9), l.ProductID, l.Quantity, l.UnitPrice, price("0.999")).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("UPDATE products").
			WithArgs(l.Quantity, l.ProductID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	}

	mock.ExpectCommit()

	order, err := svc.PlaceOrder(context.Background(), 1, lines)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(price("2.00")), "total = %s", order.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_PlaceOrder_InsufficientStock(t *testing.T) {
	svc, mock := newOrderTestFixture(t)
	defer mock.Close()

	lines := []domain.PurchaseLine{
		{ProductID: 1, Quantity: 2, UnitPrice: price("10.00")},
		{ProductID: 2, Quantity: 5, UnitPrice: price("4.00")},
	}

	mock.ExpectBeginTx(serializableOpts)
	mock.ExpectQuery("SELECT available_quantity FROM products").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"available_quantity"}).AddRow(10))
	// Second line is short: 3 < 5. Nothing must be written.
	mock.ExpectQuery("SELECT available_quantity FROM products").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"available_quantity"}).AddRow(3))
	mock.ExpectRollback()

	order, err := svc.PlaceOrder(context.Background(), 1, lines)
	assert.Nil(t, order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInsufficientStock), "expected ErrInsufficientStock, got: %v", err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, int64(2), appErr.ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_PlaceOrder_UnknownProduct(t *testing.T) {
	svc, mock := newOrderTestFixture(t)
	defer mock.Close()

	lines := []domain.PurchaseLine{
		{ProductID: 99, Quantity: 1, UnitPrice: price("10.00")},
	}

	mock.ExpectBeginTx(serializableOpts)
	mock.ExpectQuery("SELECT available_quantity FROM products").
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	order, err := svc.PlaceOrder(context.Background(), 1, lines)
	assert.Nil(t, order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInsufficientStock), "expected ErrInsufficientStock, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_PlaceOrder_ConcurrentDecrementLosesStock(t *testing.T) {
	svc, mock := newOrderTestFixture(t)
	defer mock.Close()

	lines := []domain.PurchaseLine{
		{ProductID: 1, Quantity: 2, UnitPrice: price("10.00")},
	}

	mock.ExpectBeginTx(serializableOpts)
	mock.ExpectQuery("SELECT available_quantity FROM products").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"available_quantity"}).AddRow(2))
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(1), price("20.00")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec("INSERT INTO order_lines").
		WithArgs(int64(3), int64(1), 2, price("10.00"), price("20.00")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// The guarded update hits zero rows: stock vanished mid-transaction.
	mock.ExpectExec("UPDATE products").
		WithArgs(2, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	order, err := svc.PlaceOrder(context.Background(), 1, lines)
	assert.Nil(t, order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInsufficientStock), "expected ErrInsufficientStock, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_PlaceOrder_SerializationConflictOnCommit(t *testing.T) {
	svc, mock := newOrderTestFixture(t)
	defer mock.Close()

	lines := []domain.PurchaseLine{
		{ProductID: 1, Quantity: 1, UnitPrice: price("10.00")},
	}

	mock.ExpectBeginTx(serializableOpts)
	mock.ExpectQuery("SELECT available_quantity FROM products").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"available_quantity"}).AddRow(5))
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(1), price("10.00")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(4)))
	mock.ExpectExec("INSERT INTO order_lines").
		WithArgs(int64(4), int64(1), 1, price("10.00"), price("10.00")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(1, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})

	order, err := svc.PlaceOrder(context.Background(), 1, lines)
	assert.Nil(t, order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorageFailure), "expected ErrStorageFailure, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_PlaceOrder_BeginFails(t *testing.T) {
	svc, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectBeginTx(serializableOpts).WillReturnError(errors.New("connection refused"))

	lines := []domain.PurchaseLine{
		{ProductID: 1, Quantity: 1, UnitPrice: price("10.00")},
	}

	order, err := svc.PlaceOrder(context.Background(), 1, lines)
	assert.Nil(t, order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorageFailure), "expected ErrStorageFailure, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_PlaceOrder_InvalidRequests(t *testing.T) {
	tests := []struct {
		name     string
		clientID int64
		lines    []domain.PurchaseLine
	}{
		{
			name:     "zero client id",
			clientID: 0,
			lines:    []domain.PurchaseLine{{ProductID: 1, Quantity: 1, UnitPrice: price("1.00")}},
		},
		{
			name:     "empty lines",
			clientID: 1,
			lines:    nil,
		},
		{
			name:     "zero quantity",
			clientID: 1,
			lines:    []domain.PurchaseLine{{ProductID: 1, Quantity: 0, UnitPrice: price("1.00")}},
		},
		{
			name:     "negative quantity",
			clientID: 1,
			lines:    []domain.PurchaseLine{{ProductID: 1, Quantity: -3, UnitPrice: price("1.00")}},
		},
		{
			name:     "negative price",
			clientID: 1,
			lines:    []domain.PurchaseLine{{ProductID: 1, Quantity: 1, UnitPrice: price("-1.00")}},
		},
		{
			name:     "zero product id",
			clientID: 1,
			lines:    []domain.PurchaseLine{{ProductID: 0, Quantity: 1, UnitPrice: price("1.00")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newOrderTestFixture(t)
			defer mock.Close()

			order, err := svc.PlaceOrder(context.Background(), tt.clientID, tt.lines)
			assert.Nil(t, order)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest), "expected ErrInvalidRequest, got: %v", err)

			// No transaction was opened; storage was never touched.
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// --- GetOrder / ListOrders ---

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	svc, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, client_id, total, created_at").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	order, err := svc.GetOrder(context.Background(), 404)
	assert.Nil(t, order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderService_ListOrders_InvalidClient(t *testing.T) {
	svc, mock := newOrderTestFixture(t)
	defer mock.Close()

	orders, total, err := svc.ListOrders(context.Background(), 0, 1, 20)
	assert.Nil(t, orders)
	assert.Zero(t, total)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest), "expected ErrInvalidRequest, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
