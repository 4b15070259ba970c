package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/smartstock/smartstock-backend/internal/user/events"
	"github.com/smartstock/smartstock-backend/internal/user/repository"
	"github.com/smartstock/smartstock-backend/pkg/errors"
	"github.com/smartstock/smartstock-backend/pkg/logger"
)

// UserService handles user business logic
type UserService struct {
	users     *repository.UserRepository
	publisher *events.UserEventPublisher
	logger    *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(users *repository.UserRepository, publisher *events.UserEventPublisher, log *logger.Logger) *UserService {
	return &UserService{
		users:     users,
		publisher: publisher,
		logger:    log,
	}
}

// CreateUserRequest represents a create user request
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin supervisor operator"`
}

// UpdateUserRequest represents an update user request
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=100"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin supervisor operator"`
	Active   *bool   `json:"active"`
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*repository.User, error) {
	username := strings.TrimSpace(req.Username)

	existing, _ := s.users.GetByUsername(ctx, username)
	if existing != nil {
		return nil, errors.Conflict("a user with this username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	role := req.Role
	if role == "" {
		role = "operator"
	}

	user := &repository.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishUserCreated(ctx, user)
	}

	return user, nil
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*repository.User, error) {
	return s.users.GetByID(ctx, id)
}

// List lists all users
func (s *UserService) List(ctx context.Context) ([]*repository.User, error) {
	return s.users.List(ctx)
}

// Update updates a user. A username change is published with both the old
// and new names so downstream services can re-attribute their records.
func (s *UserService) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*repository.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	oldUsername := ""

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			existing, _ := s.users.GetByUsername(ctx, username)
			if existing != nil && existing.ID != id {
				return nil, errors.Conflict("a user with this username already exists")
			}
			oldUsername = user.Username
			changes["username"] = map[string]string{"from": user.Username, "to": username}
			user.Username = username
		}
	}

	if req.Role != nil && *req.Role != user.Role {
		changes["role"] = map[string]string{"from": user.Role, "to": *req.Role}
		user.Role = *req.Role
	}

	if req.Active != nil && *req.Active != user.Active {
		changes["active"] = *req.Active
		user.Active = *req.Active
	}

	if len(changes) == 0 {
		return user, nil
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishUserUpdated(ctx, user, changes, oldUsername)
	}

	return user, nil
}

// ChangePassword replaces a user's password
func (s *UserService) ChangePassword(ctx context.Context, id int64, password string) error {
	if len(password) < 6 {
		return errors.BadRequest("password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Internal("failed to hash password")
	}

	return s.users.UpdatePassword(ctx, id, string(hashedPassword))
}

// Delete removes a user. Ledger rows and movement history written by the
// user keep their attribution.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.PublishUserDeleted(ctx, user.ID, user.Username)
	}

	return nil
}

// ValidateCredentials checks a username/password pair
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (*repository.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, errors.BadRequest("invalid credentials")
	}

	if !user.Active {
		return nil, errors.BadRequest("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.BadRequest("invalid credentials")
	}

	return user, nil
}
