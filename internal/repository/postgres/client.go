package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/repository"
	"github.com/marianotorresleyva/storefront/pkg/database"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

// ClientRepository implements repository.ClientRepository using PostgreSQL.
type ClientRepository struct {
	db database.Querier
}

// NewClientRepository creates a new PostgreSQL-backed client repository.
func NewClientRepository(db database.Querier) *ClientRepository {
	return &ClientRepository{db: db}
}

// WithTx returns a copy of the repository bound to an open transaction.
func (r *ClientRepository) WithTx(tx pgx.Tx) repository.ClientRepository {
	return &ClientRepository{db: tx}
}

// List returns all clients with their login users.
func (r *ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, address, created_at
		FROM clients
		ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(
			&c.ID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.Phone,
			&c.Address,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan client row: %w", err)
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client rows: %w", err)
	}

	// Batch-load users for all clients in a single query to avoid N+1.
	if len(clients) > 0 {
		clientIDs := make([]int64, len(clients))
		for i := range clients {
			clientIDs[i] = clients[i].ID
		}

		usersByClient, err := r.loadUsers(ctx, clientIDs)
		if err != nil {
			return nil, err
		}

		for i := range clients {
			if users, ok := usersByClient[clients[i].ID]; ok {
				clients[i].Users = users
			} else {
				clients[i].Users = []domain.User{}
			}
		}
	}

	return clients, nil
}

// GetByID retrieves a client by id with its login users.
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, address, created_at
		FROM clients
		WHERE id = $1`

	var c domain.Client
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get client by id: %w", err)
	}

	usersByClient, err := r.loadUsers(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	c.Users = usersByClient[id]
	if c.Users == nil {
		c.Users = []domain.User{}
	}

	return &c, nil
}

// EmailExists reports whether a client with the given email is registered.
func (r *ClientRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check client email: %w", err)
	}
	return exists, nil
}

// Insert inserts a new client and returns its generated id.
func (r *ClientRepository) Insert(ctx context.Context, c *domain.Client) (int64, error) {
	query := `
		INSERT INTO clients (first_name, last_name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Address,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.AlreadyExists("client", "email", c.Email)
		}
		return 0, fmt.Errorf("insert client: %w", err)
	}

	return id, nil
}

// Update replaces a client's contact details.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	query := `
		UPDATE clients
		SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5
		WHERE id = $6`

	ct, err := r.db.Exec(ctx, query,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Address,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("client", c.ID)
	}

	return nil
}

// Delete removes a client. Its users are removed by the FK cascade.
func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("client", id)
	}

	return nil
}

// loadUsers retrieves the users of the given clients, grouped by client id.
func (r *ClientRepository) loadUsers(ctx context.Context, clientIDs []int64) (map[int64][]domain.User, error) {
	query := `
		SELECT id, client_id, role_id, username, created_at
		FROM users
		WHERE client_id = ANY($1)
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, clientIDs)
	if err != nil {
		return nil, fmt.Errorf("query client users: %w", err)
	}
	defer rows.Close()

	usersByClient := make(map[int64][]domain.User, len(clientIDs))
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID,
			&u.ClientID,
			&u.RoleID,
			&u.Username,
			&u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		usersByClient[u.ClientID] = append(usersByClient[u.ClientID], u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return usersByClient, nil
}
