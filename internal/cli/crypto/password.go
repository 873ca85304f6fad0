// Package crypto holds the client-side secrets handling: password hashes kept in the settings
// file and the sealing of the backend token.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its stored hash.
var ErrMismatch = errors.New("password mismatch")

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LegacyHash is the unsalted hex SHA-256 format used by old settings files.
func LegacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// IsLegacy reports whether stored is an old SHA-256 hash.
func IsLegacy(stored string) bool {
	if len(stored) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}

// CheckPassword compares password with stored, accepting both bcrypt and legacy hashes.
// needsUpgrade is true when the match was against a legacy hash.
func CheckPassword(stored, password string) (needsUpgrade bool, err error) {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false, ErrMismatch
	}
	if IsLegacy(stored) {
		if subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(LegacyHash(password))) == 1 {
			return true, nil
		}
		return false, ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, ErrMismatch
		}
		return false, err
	}
	return false, nil
}
