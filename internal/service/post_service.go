package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/dto"
	"github.com/prohmpiriya/postboard-api/internal/metrics"
	"github.com/prohmpiriya/postboard-api/internal/repository"
	"github.com/prohmpiriya/postboard-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostService defines the interface for post operations
type PostService interface {
	// CreatePost creates a post authored by the caller
	CreatePost(ctx context.Context, identity *domain.Identity, req *dto.CreatePostRequest) (*domain.Post, error)
	// ListPosts returns one page of posts
	ListPosts(ctx context.Context, q *dto.ListQuery) (*Page[*domain.Post], error)
	// ListUserPosts returns one page of a single author's posts
	ListUserPosts(ctx context.Context, userID string, q *dto.ListQuery) (*Page[*domain.Post], error)
	// GetPost retrieves a post by ID
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	// UpdatePost changes the content of a post the caller owns
	UpdatePost(ctx context.Context, identity *domain.Identity, id string, req *dto.UpdatePostRequest) (*domain.Post, error)
	// DeletePost removes a post the caller owns
	DeletePost(ctx context.Context, identity *domain.Identity, id string) error
}

type postService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	publisher EventPublisher
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
) PostService {
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &postService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// CreatePost creates a new post
func (s *postService) CreatePost(ctx context.Context, identity *domain.Identity, req *dto.CreatePostRequest) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.create")
	defer span.End()

	if err := requireIdentity(identity); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("author_id", identity.ID))

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	post := &domain.Post{
		ID:        uuid.New().String(),
		Content:   req.Content,
		AuthorID:  identity.ID,
		CreatedAt: now,
		UpdatedAt: now,
		Author: &domain.Author{
			ID:    identity.ID,
			Name:  identity.Name,
			Email: identity.Email,
			Role:  identity.Role,
		},
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordPostMutation(ctx, "create")
	publishBestEffort(ctx, s.publisher, domain.EventPostCreated, post.ID, identity.ID, post)

	span.SetAttributes(attribute.String("post_id", post.ID))
	span.SetStatus(codes.Ok, "")
	return post, nil
}

// ListPosts lists posts with search, sort and pagination
func (s *postService) ListPosts(ctx context.Context, q *dto.ListQuery) (*Page[*domain.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.list")
	defer span.End()

	result, err := s.list(ctx, "", q)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("total", result.Pagination.TotalCount))
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// ListUserPosts lists the posts of one author
func (s *postService) ListUserPosts(ctx context.Context, userID string, q *dto.ListQuery) (*Page[*domain.Post], error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.list_by_user")
	defer span.End()

	span.SetAttributes(attribute.String("author_id", userID))

	if !validID(userID) {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	result, err := s.list(ctx, userID, q)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (s *postService) list(ctx context.Context, authorID string, q *dto.ListQuery) (*Page[*domain.Post], error) {
	page, limit, err := pageParams(q)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = &dto.ListQuery{}
	}

	sort, ok := repository.ParsePostSort(q.Sort)
	if !ok {
		return nil, domain.NewValidationError("sort", "sort must be one of createdAt, updatedAt, content")
	}

	filter := &repository.PostFilter{
		Search:   q.SearchTerm(),
		AuthorID: authorID,
		Sort:     sort,
		Limit:    limit,
		Offset:   offset(page, limit),
	}

	return fetchPage(ctx, page, limit,
		func(ctx context.Context) ([]*domain.Post, error) { return s.postRepo.List(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.postRepo.Count(ctx, filter) },
	)
}

// GetPost retrieves a post by ID
func (s *postService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.get")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", id))

	if !validID(id) {
		span.SetStatus(codes.Error, "post not found")
		return nil, domain.ErrPostNotFound
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if post == nil {
		span.SetStatus(codes.Error, "post not found")
		return nil, domain.ErrPostNotFound
	}

	span.SetStatus(codes.Ok, "")
	return post, nil
}

// UpdatePost updates a post. A post owned by someone else is reported
// as not found.
func (s *postService) UpdatePost(ctx context.Context, identity *domain.Identity, id string, req *dto.UpdatePostRequest) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.update")
	defer span.End()

	if err := requireIdentity(identity); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("post_id", id),
		attribute.String("author_id", identity.ID),
	)

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !validID(id) {
		span.SetStatus(codes.Error, "post not found")
		return nil, domain.ErrPostNotFound
	}

	post, err := s.postRepo.UpdateOwned(ctx, id, identity.ID, *req.Content)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if post == nil {
		span.SetStatus(codes.Error, "post not found")
		return nil, domain.ErrPostNotFound
	}

	metrics.RecordPostMutation(ctx, "update")
	publishBestEffort(ctx, s.publisher, domain.EventPostUpdated, post.ID, identity.ID, post)

	span.SetStatus(codes.Ok, "")
	return post, nil
}

// DeletePost deletes a post owned by the caller
func (s *postService) DeletePost(ctx context.Context, identity *domain.Identity, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.post.delete")
	defer span.End()

	if err := requireIdentity(identity); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(
		attribute.String("post_id", id),
		attribute.String("author_id", identity.ID),
	)

	if !validID(id) {
		span.SetStatus(codes.Error, "post not found")
		return domain.ErrPostNotFound
	}

	deleted, err := s.postRepo.DeleteOwned(ctx, id, identity.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if !deleted {
		span.SetStatus(codes.Error, "post not found")
		return domain.ErrPostNotFound
	}

	metrics.RecordPostMutation(ctx, "delete")
	publishBestEffort(ctx, s.publisher, domain.EventPostDeleted, id, identity.ID, nil)

	span.SetStatus(codes.Ok, "")
	return nil
}
