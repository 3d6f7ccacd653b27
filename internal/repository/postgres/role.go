package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/pkg/database"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

// RoleRepository implements repository.RoleRepository using PostgreSQL.
type RoleRepository struct {
	db database.Querier
}

// NewRoleRepository creates a new PostgreSQL-backed role repository.
func NewRoleRepository(db database.Querier) *RoleRepository {
	return &RoleRepository{db: db}
}

// List returns all roles ordered by id.
func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT id, description FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Description); err != nil {
			return nil, fmt.Errorf("scan role row: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role rows: %w", err)
	}

	return roles, nil
}

// GetByID retrieves a role by id.
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRow(ctx, `SELECT id, description FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get role by id: %w", err)
	}

	return &role, nil
}

// Insert inserts a new role and returns its generated id.
func (r *RoleRepository) Insert(ctx context.Context, description string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO roles (description) VALUES ($1) RETURNING id`, description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert role: %w", err)
	}

	return id, nil
}

// Update replaces a role's description.
func (r *RoleRepository) Update(ctx context.Context, id int64, description string) error {
	ct, err := r.db.Exec(ctx, `UPDATE roles SET description = $1 WHERE id = $2`, description, id)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("role", id)
	}

	return nil
}

// Delete removes a role.
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("role", id)
	}

	return nil
}
