package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/examhub/examhub-backend/internal/model"
	"github.com/examhub/examhub-backend/internal/repository"
)

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already registered")

// UserService handles account registration and administration.
type UserService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{userRepo: userRepo, auth: auth}
}

// Register creates a new account. Self-registered accounts are always
// STUDENT; elevation to TEACHER or ADMIN is a separate admin-only mutation.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate verifies credentials and returns the account. A missing
// account and a wrong password both map to ErrInvalidCredentials so the
// response does not leak which emails are registered.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves one account.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List retrieves all accounts with content and attempt counts for the admin
// user view.
func (s *UserService) List(ctx context.Context) ([]model.UserWithCounts, error) {
	return s.userRepo.ListWithCounts(ctx)
}

// UpdateRole changes an account's role. Demoting a user invalidates their
// session so stale tokens cannot keep elevated permissions.
func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role

	if err := s.auth.ResetSession(ctx, id); err != nil {
		return nil, fmt.Errorf("reset session: %w", err)
	}
	return user, nil
}

// Delete removes an account. Attempts and results reference the account via
// FK cascade, so deleting a student also removes their grade history.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.auth.ResetSession(ctx, id)
}
