package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in    string
		want  Role
		valid bool
	}{
		{"USER", RoleUser, true},
		{"admin", RoleAdmin, true},
		{" Admin ", RoleAdmin, true},
		{"superuser", Role("SUPERUSER"), false},
		{"", Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			if got != tt.want || ok != tt.valid {
				t.Errorf("ParseRole(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.valid)
			}
		})
	}
}

func TestIdentity_HasRole(t *testing.T) {
	user := &Identity{ID: "u1", Role: RoleUser}

	assert.True(t, user.HasRole())
	assert.True(t, user.HasRole(RoleUser, RoleAdmin))
	assert.False(t, user.HasRole(RoleAdmin))
}

func TestUser_PasswordNeverSerialized(t *testing.T) {
	body, err := json.Marshal(&User{ID: "u1", Email: "a@b.co", PasswordHash: "$2a$10$hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "hash")
	assert.NotContains(t, string(body), "password")
}

func TestErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("repo: %w", ErrPostNotFound)

	assert.True(t, IsNotFoundError(wrapped))
	assert.True(t, IsConflictError(ErrUserAlreadyExists))
	assert.True(t, IsAuthError(ErrTokenExpired))
	assert.False(t, IsAuthError(ErrForbidden))

	verr := NewValidationError("email", "must be a valid email")
	assert.True(t, IsValidationError(verr))
	assert.True(t, errors.Is(fmt.Errorf("wrap: %w", verr), ErrValidation))
	assert.Equal(t, "email: must be a valid email", verr.Error())
}
