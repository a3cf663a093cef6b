package dto

import (
	"strings"

	"github.com/prohmpiriya/postboard-api/internal/domain"
)

// UpdateUserRequest is a partial update of the caller's own account.
// Role is deliberately absent.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Validate checks the fields that were supplied
func (r *UpdateUserRequest) Validate() error {
	if r.Name == nil && r.Email == nil && r.Password == nil {
		return domain.NewValidationError("", "At least one of name, email, password is required")
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return domain.NewValidationError("name", "Name must not be empty")
		}
		r.Name = &name
	}
	if r.Email != nil {
		email := NormalizeEmail(*r.Email)
		if ok, msg := ValidateEmail(email); !ok {
			return domain.NewValidationError("email", msg)
		}
		r.Email = &email
	}
	if r.Password != nil {
		if ok, msg := ValidatePassword(*r.Password); !ok {
			return domain.NewValidationError("password", msg)
		}
	}
	return nil
}

// ChangeRoleRequest is used by administrators to change a user's role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// Validate checks the role value
func (r *ChangeRoleRequest) Validate() (domain.Role, error) {
	role, ok := domain.ParseRole(r.Role)
	if !ok {
		return "", domain.NewValidationError("role", "Role must be one of USER, ADMIN")
	}
	return role, nil
}

// ProfileResponse is the caller's account plus activity counters
type ProfileResponse struct {
	*domain.User
	PostCount int64 `json:"postCount"`
}
