package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/marianotorresleyva/storefront/internal/domain"
	"github.com/marianotorresleyva/storefront/internal/repository"
	"github.com/marianotorresleyva/storefront/pkg/database"
	apperrors "github.com/marianotorresleyva/storefront/pkg/errors"
)

const bcryptCost = 12

// RegisterClientInput is the full registration payload: client contact
// details plus the initial login account.
type RegisterClientInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Username  string
	Password  string
	RoleID    int64
}

// ClientService manages clients and their login users. Registration creates
// the client and its first user in one serializable transaction so the
// duplicate checks and the inserts cannot interleave with a concurrent
// registration of the same email or username.
type ClientService struct {
	db      database.DBTX
	clients repository.ClientRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

// NewClientService creates a new client service.
func NewClientService(db database.DBTX, clients repository.ClientRepository, users repository.UserRepository, logger *slog.Logger) *ClientService {
	return &ClientService{
		db:      db,
		clients: clients,
		users:   users,
		logger:  logger,
	}
}

// Register creates a client together with its first login user. Duplicate
// email or username aborts the registration with ErrAlreadyExists.
func (s *ClientService) Register(ctx context.Context, in RegisterClientInput) (*domain.Client, error) {
	if in.Email == "" {
		return nil, apperrors.InvalidRequest("email is required")
	}
	if in.Username == "" {
		return nil, apperrors.InvalidRequest("username is required")
	}
	if len(in.Password) < 8 {
		return nil, apperrors.InvalidRequest("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, apperrors.StorageFailure(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	clients := s.clients.WithTx(tx)
	users := s.users.WithTx(tx)

	emailTaken, err := clients.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, apperrors.StorageFailure(err)
	}
	if emailTaken {
		return nil, apperrors.AlreadyExists("client", "email", in.Email)
	}

	usernameTaken, err := users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, apperrors.StorageFailure(err)
	}
	if usernameTaken {
		return nil, apperrors.AlreadyExists("user", "username", in.Username)
	}

	client := &domain.Client{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
	}

	clientID, err := clients.Insert(ctx, client)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, err
		}
		return nil, apperrors.StorageFailure(err)
	}
	client.ID = clientID

	user := &domain.User{
		ClientID:     clientID,
		RoleID:       in.RoleID,
		Username:     in.Username,
		PasswordHash: string(hash),
	}

	userID, err := users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, err
		}
		return nil, apperrors.StorageFailure(err)
	}
	user.ID = userID
	user.PasswordHash = ""
	client.Users = []domain.User{*user}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.StorageFailure(fmt.Errorf("commit transaction: %w", err))
	}

	s.logger.InfoContext(ctx, "client registered",
		slog.Int64("client_id", clientID),
		slog.Int64("user_id", userID),
	)

	return client, nil
}

// ListClients returns all clients with their login users.
func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// GetClient retrieves a client by id.
func (s *ClientService) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("client", id)
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return client, nil
}

// UpdateClient replaces a client's contact details.
func (s *ClientService) UpdateClient(ctx context.Context, c *domain.Client) error {
	if c.Email == "" {
		return apperrors.InvalidRequest("email is required")
	}
	if err := s.clients.Update(ctx, c); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "client updated", slog.Int64("client_id", c.ID))
	return nil
}

// DeleteClient removes a client and, via the schema cascade, its users.
func (s *ClientService) DeleteClient(ctx context.Context, id int64) error {
	if err := s.clients.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "client deleted", slog.Int64("client_id", id))
	return nil
}
