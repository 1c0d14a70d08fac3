// Package crypto hashes and verifies account passwords with bcrypt.
package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for new digests.
var PasswordCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt digest of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password can not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(hash), err
}

// CheckPasswordHash reports whether password matches the digest.
func CheckPasswordHash(hash, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
