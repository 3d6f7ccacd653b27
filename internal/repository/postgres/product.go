package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/repository"
	"github.com/marianotorresleyva/storefront/pkg/database"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

const productColumns = `id, code, name, category, company, short_description, long_description, image_url, price, available_quantity, rating`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// It holds a full DBTX because CreateBatch opens its own transaction.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns all products ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// GetByCode retrieves a product by its unique code.
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE code = $1`

	var p domain.Product
	err := scanProduct(r.db.QueryRow(ctx, query, code), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get product by code: %w", err)
	}

	return &p, nil
}

// Create inserts a new product and returns its generated id.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (int64, error) {
	query := `
		INSERT INTO products (code, name, category, company, short_description, long_description, image_url, price, available_quantity, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		p.Code,
		p.Name,
		p.Category,
		p.Company,
		p.ShortDescription,
		p.LongDescription,
		p.ImageURL,
		p.Price,
		p.AvailableQuantity,
		p.Rating,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.AlreadyExists("product", "code", p.Code)
		}
		return 0, fmt.Errorf("insert product: %w", err)
	}

	return id, nil
}

// CreateBatch inserts multiple products atomically. Any failure (including a
// duplicate code) rolls back the whole batch.
func (r *ProductRepository) CreateBatch(ctx context.Context, ps []domain.Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO products (code, name, category, company, short_description, long_description, image_url, price, available_quantity, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for i := range ps {
		p := &ps[i]
		_, err := tx.Exec(ctx, query,
			p.Code,
			p.Name,
			p.Category,
			p.Company,
			p.ShortDescription,
			p.LongDescription,
			p.ImageURL,
			p.Price,
			p.AvailableQuantity,
			p.Rating,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("product", "code", p.Code)
			}
			return fmt.Errorf("insert product %q: %w", p.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// UpdateByCode applies a partial update to the product with the given code.
func (r *ProductRepository) UpdateByCode(ctx context.Context, code string, update repository.ProductUpdate) error {
	var (
		sets     []string
		args     []any
		argIndex = 1
	)

	addSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Name != nil {
		addSet("name", *update.Name)
	}
	if update.Category != nil {
		addSet("category", *update.Category)
	}
	if update.Company != nil {
		addSet("company", *update.Company)
	}
	if update.ShortDescription != nil {
		addSet("short_description", *update.ShortDescription)
	}
	if update.LongDescription != nil {
		addSet("long_description", *update.LongDescription)
	}
	if update.ImageURL != nil {
		addSet("image_url", *update.ImageURL)
	}
	if update.Price != nil {
		addSet("price", *update.Price)
	}
	if update.AvailableQuantity != nil {
		addSet("available_quantity", *update.AvailableQuantity)
	}
	if update.Rating != nil {
		addSet("rating", *update.Rating)
	}

	if len(sets) == 0 {
		return apperrors.InvalidRequest("no fields to update")
	}

	args = append(args, code)
	query := fmt.Sprintf("UPDATE products SET %s WHERE code = $%d", strings.Join(sets, ", "), argIndex)

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", code)
	}

	return nil
}

// scanProduct scans a product row into p. Works for both pgx.Row and pgx.Rows.
func scanProduct(row pgx.Row, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.Category,
		&p.Company,
		&p.ShortDescription,
		&p.LongDescription,
		&p.ImageURL,
		&p.Price,
		&p.AvailableQuantity,
		&p.Rating,
	)
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
