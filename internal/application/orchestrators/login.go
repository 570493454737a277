package orchestrators

import (
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned when the submitted password does not match
// the configured admin credential.
var ErrInvalidPassword = errors.New("invalid password")

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Password string
}

// LoginDeps holds dependencies for Login. The app has a single shared admin
// credential, stored as a bcrypt hash.
type LoginDeps struct {
	PasswordHash []byte
}

// HashPassword produces the bcrypt hash for the shared admin credential.
// PRE: plaintext is non-empty
// POST: Returns a hash suitable for CARELOG_ADMIN_PASSWORD_HASH
func HashPassword(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), 12)
}

// ExecuteLogin validates the shared password.
// PRE: deps.PasswordHash is a bcrypt hash
// POST: Returns nil on match; records failed logins as auth events
func ExecuteLogin(input LoginInput, deps LoginDeps) error {
	if input.Password == "" {
		slog.Info("auth_event", "event", "login_failed", "reason", "empty_password")
		return ErrInvalidPassword
	}

	if err := bcrypt.CompareHashAndPassword(deps.PasswordHash, []byte(input.Password)); err != nil {
		slog.Info("auth_event", "event", "login_failed", "reason", "wrong_password")
		return ErrInvalidPassword
	}

	slog.Info("auth_event", "event", "login_succeeded")
	return nil
}
