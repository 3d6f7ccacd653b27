package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/marianotorresleyva/storefront/internal/domain"
)

// InventoryStore defines stock-count access for the order placement
// transaction. WithTx returns a view bound to an open transaction so stock
// reads and decrements compose atomically with order writes.
type InventoryStore interface {
	// GetAvailableQuantity returns the current stock for a product.
	// Returns pkg/errors.ErrNotFound if the product does not exist.
	GetAvailableQuantity(ctx context.Context, productID int64) (int, error)

	// DecrementQuantity subtracts amount from the product's stock. The update
	// is guarded so stock can never go negative; if the guard rejects the
	// write, pkg/errors.ErrInsufficientStock is returned.
	DecrementQuantity(ctx context.Context, productID int64, amount int) error

	// WithTx returns a copy of the store that executes against tx.
	WithTx(tx pgx.Tx) InventoryStore
}

// OrderRepository defines persistence for order headers and line items.
type OrderRepository interface {
	// InsertOrder inserts an order header and returns its generated id.
	InsertOrder(ctx context.Context, clientID int64, total decimal.Decimal) (int64, error)

	// InsertLine inserts a single order line.
	InsertLine(ctx context.Context, line *domain.OrderLine) error

	// GetByID retrieves an order with its lines.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// ListByClient returns a client's orders, newest first, with the total count.
	ListByClient(ctx context.Context, clientID int64, page, perPage int) ([]domain.Order, int, error)

	// WithTx returns a copy of the repository that executes against tx.
	WithTx(tx pgx.Tx) OrderRepository
}

// ProductUpdate holds the optional fields of a partial product update.
// Nil fields are left unchanged.
type ProductUpdate struct {
	Name              *string
	Category          *string
	Company           *string
	ShortDescription  *string
	LongDescription   *string
	ImageURL          *string
	Price             *decimal.Decimal
	AvailableQuantity *int
	Rating            *float64
}

// ProductRepository defines persistence for catalog products.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (int64, error)
	CreateBatch(ctx context.Context, ps []domain.Product) error
	UpdateByCode(ctx context.Context, code string, update ProductUpdate) error
}

// ClientRepository defines persistence for clients.
type ClientRepository interface {
	List(ctx context.Context) ([]domain.Client, error)
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, c *domain.Client) (int64, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id int64) error

	// WithTx returns a copy of the repository that executes against tx.
	WithTx(tx pgx.Tx) ClientRepository
}

// UserRepository defines persistence for login users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Insert(ctx context.Context, u *domain.User) (int64, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error

	// WithTx returns a copy of the repository that executes against tx.
	WithTx(tx pgx.Tx) UserRepository
}

// RoleRepository defines persistence for roles.
type RoleRepository interface {
	List(ctx context.Context) ([]domain.Role, error)
	GetByID(ctx context.Context, id int64) (*domain.Role, error)
	Insert(ctx context.Context, description string) (int64, error)
	Update(ctx context.Context, id int64, description string) error
	Delete(ctx context.Context, id int64) error
}
