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

// RoleService manages the role catalog used by login users.
type RoleService struct {
	roles  repository.RoleRepository
	logger *slog.Logger
}

// NewRoleService creates a new role service.
func NewRoleService(roles repository.RoleRepository, logger *slog.Logger) *RoleService {
	return &RoleService{roles: roles, logger: logger}
}

// ListRoles returns all roles.
func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// GetRole retrieves a role by id.
func (s *RoleService) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("role", id)
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// CreateRole adds a role and returns it with its generated id.
func (s *RoleService) CreateRole(ctx context.Context, description string) (*domain.Role, error) {
	if description == "" {
		return nil, apperrors.InvalidRequest("role description is required")
	}

	id, err := s.roles.Insert(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.logger.InfoContext(ctx, "role created", slog.Int64("role_id", id))
	return &domain.Role{ID: id, Description: description}, nil
}

// UpdateRole replaces a role's description.
func (s *RoleService) UpdateRole(ctx context.Context, id int64, description string) error {
	if description == "" {
		return apperrors.InvalidRequest("role description is required")
	}
	if err := s.roles.Update(ctx, id, description); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "role updated", slog.Int64("role_id", id))
	return nil
}

// DeleteRole removes a role.
func (s *RoleService) DeleteRole(ctx context.Context, id int64) error {
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "role deleted", slog.Int64("role_id", id))
	return nil
}
