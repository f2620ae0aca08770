package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when a caller passes a non-positive cost.
const DefaultBcryptCost = 12

// HashPassword hashes a plain password using bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPassword compares plain password with hashed password.
func CheckPassword(plain, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
