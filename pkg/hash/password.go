package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	cost        = 12
	minPassword = 8
)

// Hash bcrypt-hashes an operator password. Length is checked here so every
// caller gets the same floor regardless of DTO validation.
func Hash(password string) (string, error) {
	if len(password) < minPassword {
		return "", fmt.Errorf("password must be at least %d characters", minPassword)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports a non-nil error when password does not match the stored hash.
func Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
