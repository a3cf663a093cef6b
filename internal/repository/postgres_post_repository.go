package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/postboard-api/internal/domain"
)

const postWithAuthorColumns = `
	p.id, p.content, p.author_id, p.created_at, p.updated_at,
	u.id, u.name, u.email, u.role
`

// PostgresPostRepository implements PostRepository using PostgreSQL
type PostgresPostRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(pool *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

// Create inserts a new post
func (r *PostgresPostRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, content, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Content,
		post.AuthorID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a post with its author
func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `SELECT ` + postWithAuthorColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`
	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// UpdateOwned changes the content in one statement guarded by ownership
func (r *PostgresPostRepository) UpdateOwned(ctx context.Context, id, authorID, content string) (*domain.Post, error) {
	query := `
		WITH p AS (
			UPDATE posts
			SET content = $3, updated_at = NOW()
			WHERE id = $1 AND author_id = $2
			RETURNING id, content, author_id, created_at, updated_at
		)
		SELECT ` + postWithAuthorColumns + `
		FROM p
		JOIN users u ON u.id = p.author_id
	`
	post, err := scanPost(r.pool.QueryRow(ctx, query, id, authorID, content))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// DeleteOwned removes the post in one statement guarded by ownership
func (r *PostgresPostRepository) DeleteOwned(ctx context.Context, id, authorID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns one page of posts with authors
func (r *PostgresPostRepository) List(ctx context.Context, filter *PostFilter) ([]*domain.Post, error) {
	where, args := buildPostWhere(filter)
	argIndex := len(args) + 1

	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN users u ON u.id = p.author_id
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, postWithAuthorColumns, where, buildPostOrderBy(filter), argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0, filter.Limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Count returns the number of posts matching the filter
func (r *PostgresPostRepository) Count(ctx context.Context, filter *PostFilter) (int64, error) {
	where, args := buildPostWhere(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM posts p "+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	post := &domain.Post{Author: &domain.Author{}}
	err := row.Scan(
		&post.ID,
		&post.Content,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Author.ID,
		&post.Author.Name,
		&post.Author.Email,
		&post.Author.Role,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}
