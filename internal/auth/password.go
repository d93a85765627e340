package auth

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrPasswordBlank    = errors.New("password cannot be only spaces")
)

const (
	minPasswordRunes = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

// hashCost is lowered by tests.
var hashCost = 12

// validatePassword applies the sign-up policy. Length is counted in
// characters, so accented passwords are not penalised.
func validatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < minPasswordRunes:
		return ErrPasswordTooShort
	case len(password) > maxPasswordBytes:
		return ErrPasswordTooLong
	case strings.TrimSpace(password) == "":
		return ErrPasswordBlank
	}
	return nil
}

// HashPassword validates and hashes a new account password.
func HashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches a stored hash. Malformed
// hashes never match.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
