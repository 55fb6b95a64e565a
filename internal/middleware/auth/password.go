package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored user passwords.
const PasswordCost = 10

// ErrPasswordMismatch means the password does not match the stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword returns nil when password matches hashed, ErrPasswordMismatch
// when it does not, and a wrapped error when hashed is not a usable bcrypt hash.
func VerifyPassword(hashed, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("verify password: %w", err)
	}
}

var dummyHash = sync.OnceValue(func() []byte {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("booklist-no-such-user"), PasswordCost)
	return hashed
})

// CompareDummy costs as much as VerifyPassword against a real hash. Login
// calls it for unknown usernames so they take as long as wrong passwords.
func CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
}
