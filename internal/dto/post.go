package dto

import (
	"strings"

	"github.com/prohmpiriya/postboard-api/internal/domain"
)

// MaxPostLength bounds post content in characters
const MaxPostLength = 10000

// CreatePostRequest represents a new post
type CreatePostRequest struct {
	Content string `json:"content"`
}

// Validate checks the content
func (r *CreatePostRequest) Validate() error {
	content, err := validateContent(r.Content)
	if err != nil {
		return err
	}
	r.Content = content
	return nil
}

// UpdatePostRequest represents a partial post update
type UpdatePostRequest struct {
	Content *string `json:"content"`
}

// Validate checks the content when supplied
func (r *UpdatePostRequest) Validate() error {
	if r.Content == nil {
		return domain.NewValidationError("content", "Content is required")
	}
	content, err := validateContent(*r.Content)
	if err != nil {
		return err
	}
	r.Content = &content
	return nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", domain.NewValidationError("content", "Content must not be empty")
	}
	if len([]rune(content)) > MaxPostLength {
		return "", domain.NewValidationError("content", "Content must not exceed 10000 characters")
	}
	return content, nil
}
