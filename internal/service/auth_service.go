package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService handles registration, admin user creation, login and token
// issuance.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	CreateUser(ctx context.Context, name, email, password string, roleTokens []string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	EnsureSuperuser(ctx context.Context, name, email, password string) error
}

// Claims represents the JWT claims carried by an access token.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo     repository.UserRepository
	hasher       PasswordHasher
	jwtSecret    string
	accessExpiry time.Duration
	logger       *zap.Logger
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	jwtSecret string,
	accessExpiry time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		hasher:       hasher,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
		logger:       logger,
	}
}

// Register creates a public account. The role set is always exactly {USER},
// regardless of anything the caller asked for.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return s.createAccount(ctx, name, email, password, []domain.Role{domain.RoleUser})
}

// CreateUser is the superuser-only creation path. Role tokens are parsed
// case-insensitively; an empty set defaults to {USER}; an unrecognized token
// fails with domain.ErrInvalidRole.
func (s *authService) CreateUser(ctx context.Context, name, email, password string, roleTokens []string) (*domain.User, error) {
	roles, err := domain.NormalizeRoles(roleTokens)
	if err != nil {
		return nil, err
	}
	return s.createAccount(ctx, name, email, password, roles)
}

func (s *authService) createAccount(ctx context.Context, name, email, password string, roles []domain.Role) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns a signed access token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return token, user, nil
}

// EnsureSuperuser is the idempotent startup bootstrap: when the configured
// account does not exist it is created with both roles, otherwise nothing
// happens.
func (s *authService) EnsureSuperuser(ctx context.Context, name, email, password string) error {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if err != repository.ErrUserNotFound {
		return fmt.Errorf("failed to check superuser account: %w", err)
	}

	user, err := s.createAccount(ctx, name, email, password,
		[]domain.Role{domain.RoleSuperuser, domain.RoleUser})
	if err != nil {
		return fmt.Errorf("failed to bootstrap superuser: %w", err)
	}

	s.logger.Info("Superuser account created",
		zap.String("user_id", user.ID.String()),
		zap.String("email", email),
	)
	return nil
}

// generateAccessToken signs a JWT carrying the user id and role set.
func (s *authService) generateAccessToken(user *domain.User) (string, error) {
	roles := make([]string, len(user.Roles))
	for i, role := range user.Roles {
		roles[i] = string(role)
	}

	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and validates an access token string.
func ValidateToken(tokenString, jwtSecret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
