package service

import "golang.org/x/crypto/bcrypt"

// BcryptCost is the cost factor for bcrypt hashing
const BcryptCost = 10

// PasswordHasher is the one-way credential encoder. The rest of the code
// never compares raw passwords outside this boundary.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type bcryptHasher struct{}

// NewBcryptHasher returns the production bcrypt-backed PasswordHasher.
func NewBcryptHasher() PasswordHasher {
	return bcryptHasher{}
}

func (bcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (bcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
