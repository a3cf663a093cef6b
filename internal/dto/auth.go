package dto

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/prohmpiriya/postboard-api/internal/domain"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLength = 72
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterRequest represents registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Normalize trims surrounding whitespace and lower-cases the email
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	r.Role = strings.TrimSpace(r.Role)
}

// ValidateEmail validates email format
func (r *RegisterRequest) ValidateEmail() (bool, string) {
	return ValidateEmail(r.Email)
}

// ValidatePassword validates password strength
func (r *RegisterRequest) ValidatePassword() (bool, string) {
	return ValidatePassword(r.Password)
}

// ParsedRole returns the requested role, defaulting to USER
func (r *RegisterRequest) ParsedRole() (domain.Role, bool) {
	if r.Role == "" {
		return domain.RoleUser, true
	}
	return domain.ParseRole(r.Role)
}

// Validate runs every field check and returns the first failure
func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return domain.NewValidationError("name", "Name is required")
	}
	if ok, msg := r.ValidateEmail(); !ok {
		return domain.NewValidationError("email", msg)
	}
	if ok, msg := r.ValidatePassword(); !ok {
		return domain.NewValidationError("password", msg)
	}
	if _, ok := r.ParsedRole(); !ok {
		return domain.NewValidationError("role", "Role must be one of USER, ADMIN")
	}
	return nil
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address shape
func ValidateEmail(email string) (bool, string) {
	if !emailRegex.MatchString(email) {
		return false, "Invalid email format"
	}
	return true, ""
}

// ValidatePassword validates password strength requirements:
// at least 6 characters with an uppercase letter, a lowercase letter,
// a digit and a special character.
func ValidatePassword(password string) (bool, string) {
	if len(password) < MinPasswordLength {
		return false, "Password must be at least 6 characters"
	}

	if len(password) > MaxPasswordLength {
		return false, "Password must not exceed 72 characters"
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return false, "Password must contain at least one uppercase letter"
	}
	if !hasLower {
		return false, "Password must contain at least one lowercase letter"
	}
	if !hasDigit {
		return false, "Password must contain at least one digit"
	}
	if !hasSpecial {
		return false, "Password must contain at least one special character"
	}

	return true, ""
}
