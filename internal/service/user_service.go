package service

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/google/uuid"
)

// UserService covers account reads and profile, password and role updates.
// Who may call which operation is decided by the authorization middleware in
// front of the handlers, not here.
type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error
	UpdateRoles(ctx context.Context, id uuid.UUID, roleTokens []string) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher) UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// GetByID retrieves a user by ID.
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// List retrieves all users.
func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.FindAll(ctx)
}

// UpdateProfile updates name and email only.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Email = email
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdatePassword hashes and stores a new password credential.
func (s *userService) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, id, hash)
}

// UpdateRoles replaces the user's role set. Tokens parse case-insensitively
// with or without the ROLE_ prefix; an unrecognized token fails with
// domain.ErrInvalidRole and leaves the roles unchanged; an empty set resets
// the account to exactly {USER}.
func (s *userService) UpdateRoles(ctx context.Context, id uuid.UUID, roleTokens []string) (*domain.User, error) {
	roles, err := domain.NormalizeRoles(roleTokens)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRoles(ctx, id, roles); err != nil {
		return nil, err
	}

	return s.userRepo.FindByID(ctx, id)
}

// Delete removes a user account.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}
