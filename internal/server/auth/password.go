package auth

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/homeledger/internal/common"
)

const (
	PasswordMinLength  = 8
	PasswordExpiryDays = 90
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// ValidatePasswordStrength checks that a password meets the security
// requirements: minimum length, an uppercase letter, a lowercase letter, a
// digit and a special character. Violations wrap common.ErrorValidation.
func ValidatePasswordStrength(password string) error {
	switch {
	case len(password) < PasswordMinLength:
		return fmt.Errorf("password must be at least %d characters long: %w", PasswordMinLength, common.ErrorValidation)
	case !upperRe.MatchString(password):
		return fmt.Errorf("password must contain at least one uppercase letter: %w", common.ErrorValidation)
	case !lowerRe.MatchString(password):
		return fmt.Errorf("password must contain at least one lowercase letter: %w", common.ErrorValidation)
	case !digitRe.MatchString(password):
		return fmt.Errorf("password must contain at least one digit: %w", common.ErrorValidation)
	case !specialRe.MatchString(password):
		return fmt.Errorf("password must contain at least one special character: %w", common.ErrorValidation)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// IsPasswordExpired reports whether the last password change is older than
// PasswordExpiryDays. A user that never changed the password is not expired.
func IsPasswordExpired(changedAt *time.Time) bool {
	if changedAt == nil {
		return false
	}
	return time.Since(*changedAt) >= PasswordExpiryDays*24*time.Hour
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
