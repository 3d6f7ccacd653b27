package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/repository"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepository) CreateBatch(ctx context.Context, ps []domain.Product) error {
	args := m.Called(ctx, ps)
	return args.Error(0)
}

func (m *mockProductRepository) UpdateByCode(ctx context.Context, code string, update repository.ProductUpdate) error {
	args := m.Called(ctx, code, update)
	return args.Error(0)
}

func TestCatalogService_GetProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepository)
	repo.On("GetByCode", mock.Anything, "GHOST").Return(nil, apperrors.ErrNotFound)

	svc := NewCatalogService(repo, newTestLogger())

	_, err := svc.GetProduct(context.Background(), "GHOST")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "GHOST")
}

func TestCatalogService_CreateProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(int64(7), nil)

	svc := NewCatalogService(repo, newTestLogger())

	p, err := svc.CreateProduct(context.Background(), &domain.Product{
		Code:              "SKU-1",
		Name:              "Keyboard",
		Price:             decimal.RequireFromString("49.90"),
		AvailableQuantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	repo.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		product domain.Product
	}{
		{"missing code", domain.Product{Price: decimal.NewFromInt(1)}},
		{"negative price", domain.Product{Code: "SKU-1", Price: decimal.NewFromInt(-1)}},
		{"negative quantity", domain.Product{Code: "SKU-1", Price: decimal.NewFromInt(1), AvailableQuantity: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No expectations: invalid input must never reach storage.
			svc := NewCatalogService(new(mockProductRepository), newTestLogger())

			_, err := svc.CreateProduct(context.Background(), &tt.product)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest), "got: %v", err)
		})
	}
}

func TestCatalogService_CreateProducts_RejectsBadLine(t *testing.T) {
	svc := NewCatalogService(new(mockProductRepository), newTestLogger())

	err := svc.CreateProducts(context.Background(), []domain.Product{
		{Code: "SKU-1", Price: decimal.NewFromInt(1)},
		{Code: "", Price: decimal.NewFromInt(1)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))
	assert.Contains(t, err.Error(), "product 1")
}

func TestCatalogService_UpdateProduct_NegativePrice(t *testing.T) {
	svc := NewCatalogService(new(mockProductRepository), newTestLogger())

	bad := decimal.NewFromInt(-5)
	err := svc.UpdateProduct(context.Background(), "SKU-1", repository.ProductUpdate{Price: &bad})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest), "got: %v", err)
}
