package orchestrators

import (
	"errors"
	"testing"
)

func TestExecuteLogin(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	deps := LoginDeps{PasswordHash: hash}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"correct password", "correct-horse", nil},
		{"wrong password", "battery-staple", ErrInvalidPassword},
		{"empty password", "", ErrInvalidPassword},
		{"prefix of password", "correct", ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ExecuteLogin(LoginInput{Password: tt.password}, deps)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ExecuteLogin = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
