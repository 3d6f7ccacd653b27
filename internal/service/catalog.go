package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/repository"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

// CatalogService manages the product catalog. Stock decrements are owned by
// the order engine; this service only sets absolute quantities.
type CatalogService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(products repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger}
}

// ListProducts returns the full catalog.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a product by its unique code.
func (s *CatalogService) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	product, err := s.products.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", code)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// CreateProduct adds a product to the catalog and returns it with its
// generated id.
func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if p.Code == "" {
		return nil, apperrors.InvalidRequest("product code is required")
	}
	if p.Price.IsNegative() {
		return nil, apperrors.InvalidRequest("product price must not be negative")
	}
	if p.AvailableQuantity < 0 {
		return nil, apperrors.InvalidRequest("available quantity must not be negative")
	}

	id, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", id),
		slog.String("code", p.Code),
	)

	return p, nil
}

// CreateProducts adds a batch of products atomically. A duplicate code
// anywhere in the batch rolls back the whole insert.
func (s *CatalogService) CreateProducts(ctx context.Context, ps []domain.Product) error {
	if len(ps) == 0 {
		return apperrors.InvalidRequest("batch must contain at least one product")
	}
	for i := range ps {
		if ps[i].Code == "" {
			return apperrors.InvalidRequest(fmt.Sprintf("product %d: code is required", i))
		}
		if ps[i].Price.IsNegative() {
			return apperrors.InvalidRequest(fmt.Sprintf("product %d: price must not be negative", i))
		}
		if ps[i].AvailableQuantity < 0 {
			return apperrors.InvalidRequest(fmt.Sprintf("product %d: available quantity must not be negative", i))
		}
	}

	if err := s.products.CreateBatch(ctx, ps); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product batch created", slog.Int("count", len(ps)))
	return nil
}

// UpdateProduct applies a partial update to the product with the given code.
func (s *CatalogService) UpdateProduct(ctx context.Context, code string, update repository.ProductUpdate) error {
	if update.Price != nil && update.Price.IsNegative() {
		return apperrors.InvalidRequest("product price must not be negative")
	}
	if update.AvailableQuantity != nil && *update.AvailableQuantity < 0 {
		return apperrors.InvalidRequest("available quantity must not be negative")
	}

	if err := s.products.UpdateByCode(ctx, code, update); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("code", code))
	return nil
}
