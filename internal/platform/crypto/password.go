package crypto

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
	ErrPasswordTooShort    = errors.New("password must be at least 10 characters")
	ErrPasswordBadCharset  = errors.New("password may only contain letters, digits and '!'")
	ErrPasswordNoLower     = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoUpper     = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoDigit     = errors.New("password must contain at least one digit")
	ErrPasswordNoBang      = errors.New("password must contain at least one '!'")
	ErrPasswordRepeatedRun = errors.New("password must not contain three identical characters in a row")
)

var (
	charsetRe = regexp.MustCompile(`^[A-Za-z0-9!]+$`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
)

// ValidatePasswordPolicy enforces the account password rules: at least 10
// characters drawn from letters, digits and '!', with one lowercase, one
// uppercase, one digit and one '!', and no run of three identical
// characters.
func ValidatePasswordPolicy(password string) error {
	if len(password) < 10 {
		return ErrPasswordTooShort
	}
	if !charsetRe.MatchString(password) {
		return ErrPasswordBadCharset
	}
	if !lowerRe.MatchString(password) {
		return ErrPasswordNoLower
	}
	if !upperRe.MatchString(password) {
		return ErrPasswordNoUpper
	}
	if !digitRe.MatchString(password) {
		return ErrPasswordNoDigit
	}
	if !strings.Contains(password, "!") {
		return ErrPasswordNoBang
	}
	for i := 2; i < len(password); i++ {
		if password[i] == password[i-1] && password[i] == password[i-2] {
			return ErrPasswordRepeatedRun
		}
	}
	return nil
}
