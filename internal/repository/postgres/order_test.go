package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/pkg/database"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

func newOrderTestFixture(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewOrderRepository(mock), mock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOrderRepository_InsertOrder_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(42), dec("26.25")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.InsertOrder(context.Background(), 42, dec("26.25"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_InsertLine_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	line := &domain.OrderLine{
		OrderID:   7,
		ProductID: 1,
		Quantity:  2,
		UnitPrice: dec("10.50"),
		Subtotal:  dec("21.00"),
	}

	mock.ExpectExec("INSERT INTO order_lines").
		WithArgs(line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.InsertLine(context.Background(), line)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_Success(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT id, client_id, total, created_at").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "client_id", "total", "created_at"}).
			AddRow(int64(7), int64(42), dec("26.25"), now))

	mock.ExpectQuery("SELECT order_id, product_id, quantity, unit_price, subtotal").
		WithArgs([]int64{7}).
		WillReturnRows(pgxmock.NewRows([]string{"order_id", "product_id", "quantity", "unit_price", "subtotal"}).
			AddRow(int64(7), int64(1), 2, dec("10.50"), dec("21.00")).
			AddRow(int64(7), int64(2), 1, dec("5.25"), dec("5.25")))

	order, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ClientID)
	assert.True(t, order.Total.Equal(dec("26.25")))
	require.Len(t, order.Lines, 2)
	assert.Equal(t, int64(1), order.Lines[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, client_id, total, created_at").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	order, err := repo.GetByID(context.Background(), 404)
	assert.Nil(t, order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByClient_Pagination(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT id, client_id, total, created_at").
		WithArgs(int64(42), 2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "client_id", "total", "created_at", "total_count"}).
			AddRow(int64(5), int64(42), dec("10.00"), now, 5).
			AddRow(int64(4), int64(42), dec("20.00"), now, 5))

	mock.ExpectQuery("SELECT order_id, product_id, quantity, unit_price, subtotal").
		WithArgs([]int64{5, 4}).
		WillReturnRows(pgxmock.NewRows([]string{"order_id", "product_id", "quantity", "unit_price", "subtotal"}).
			AddRow(int64(5), int64(1), 1, dec("10.00"), dec("10.00")))

	orders, total, err := repo.ListByClient(context.Background(), 42, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, orders, 2)
	assert.Len(t, orders[0].Lines, 1)
	assert.Empty(t, orders[1].Lines)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByClient_Empty(t *testing.T) {
	repo, mock := newOrderTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, client_id, total, created_at").
		WithArgs(int64(42), 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "client_id", "total", "created_at", "total_count"}))

	orders, total, err := repo.ListByClient(context.Background(), 42, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}
