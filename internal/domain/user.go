package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is one of the two account roles. An account holds a non-empty set of
// roles; a superuser account typically holds both.
type Role string

const (
	RoleUser      Role = "USER"
	RoleSuperuser Role = "SUPERUSER"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole accepts role tokens case-insensitively, with or without the
// legacy "ROLE_" prefix ("user", "ROLE_SUPERUSER", ...).
func ParseRole(token string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "USER", "ROLE_USER":
		return RoleUser, nil
	case "SUPERUSER", "ROLE_SUPERUSER":
		return RoleSuperuser, nil
	default:
		return "", ErrInvalidRole
	}
}

// NormalizeRoles parses a free-form role token set into a deduplicated role
// slice. An empty or nil input resets to exactly {USER}. Any unrecognized
// token fails the whole set.
func NormalizeRoles(tokens []string) ([]Role, error) {
	if len(tokens) == 0 {
		return []Role{RoleUser}, nil
	}

	seen := make(map[Role]bool, 2)
	roles := make([]Role, 0, 2)
	for _, token := range tokens {
		role, err := ParseRole(token)
		if err != nil {
			return nil, err
		}
		if !seen[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}
	return roles, nil
}

// User represents a marketplace account. PasswordHash is the bcrypt
// credential and is never serialized outward.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
