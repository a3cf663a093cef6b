package repository

import (
	"context"

	"github.com/prohmpiriya/postboard-api/internal/domain"
)

// UserRepository defines persistence operations for users.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetIdentity loads the projection the auth guard needs
	GetIdentity(ctx context.Context, id string) (*domain.Identity, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Update reports false when the user no longer exists
	Update(ctx context.Context, user *domain.User) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter *UserFilter) ([]*domain.User, error)
	Count(ctx context.Context, filter *UserFilter) (int64, error)
}

// PostRepository defines persistence operations for posts.
// Lookups return (nil, nil) when no row matches.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	// UpdateOwned changes content only when authorID owns the post
	UpdateOwned(ctx context.Context, id, authorID, content string) (*domain.Post, error)
	// DeleteOwned removes the post only when authorID owns it
	DeleteOwned(ctx context.Context, id, authorID string) (bool, error)
	List(ctx context.Context, filter *PostFilter) ([]*domain.Post, error)
	Count(ctx context.Context, filter *PostFilter) (int64, error)
}
