package service

import (
	"context"
	"time"

	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/dto"
	"github.com/prohmpiriya/postboard-api/internal/repository"
	"github.com/prohmpiriya/postboard-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceConfig holds configuration for UserService
type UserServiceConfig struct {
	BcryptCost int
}

// UserService defines the interface for user operations
type UserService interface {
	// ListUsers returns one page of users
	ListUsers(ctx context.Context, q *dto.ListQuery) (*Page[*domain.User], error)
	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id string) (*domain.User, error)
	// Profile returns the caller's record plus activity counters
	Profile(ctx context.Context, identity *domain.Identity) (*dto.ProfileResponse, error)
	// UpdateSelf applies a partial update to the caller's own account
	UpdateSelf(ctx context.Context, identity *domain.Identity, req *dto.UpdateUserRequest) (*domain.User, error)
	// DeleteSelf removes the caller's own account
	DeleteSelf(ctx context.Context, identity *domain.Identity) error
	// DeleteUser removes any account
	DeleteUser(ctx context.Context, actor *domain.Identity, id string) error
	// ChangeRole sets another user's role
	ChangeRole(ctx context.Context, actor *domain.Identity, id string, req *dto.ChangeRoleRequest) (*domain.User, error)
}

type userService struct {
	userRepo  repository.UserRepository
	postRepo  repository.PostRepository
	publisher EventPublisher
	config    *UserServiceConfig
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	publisher EventPublisher,
	config *UserServiceConfig,
) UserService {
	if config == nil {
		config = &UserServiceConfig{}
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &userService{
		userRepo:  userRepo,
		postRepo:  postRepo,
		publisher: publisher,
		config:    config,
	}
}

// ListUsers lists users with search, sort and pagination
func (s *userService) ListUsers(ctx context.Context, q *dto.ListQuery) (*Page[*domain.User], error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.list")
	defer span.End()

	filter, page, limit, err := userFilterFromQuery(q)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("page", page),
		attribute.Int("limit", limit),
		attribute.String("sort", string(filter.Sort)),
	)

	result, err := fetchPage(ctx, page, limit,
		func(ctx context.Context) ([]*domain.User, error) { return s.userRepo.List(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.userRepo.Count(ctx, filter) },
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("total", result.Pagination.TotalCount))
	span.SetStatus(codes.Ok, "")
	return result, nil
}

func userFilterFromQuery(q *dto.ListQuery) (*repository.UserFilter, int, int, error) {
	page, limit, err := pageParams(q)
	if err != nil {
		return nil, 0, 0, err
	}
	if q == nil {
		q = &dto.ListQuery{}
	}

	sort, ok := repository.ParseUserSort(q.Sort)
	if !ok {
		return nil, 0, 0, domain.NewValidationError("sort", "sort must be one of createdAt, updatedAt, name, email")
	}
	order, ok := repository.ParseSortOrder(q.Filter)
	if !ok {
		return nil, 0, 0, domain.NewValidationError("filter", "filter must be asc or desc")
	}

	return &repository.UserFilter{
		Search:    q.SearchTerm(),
		Sort:      sort,
		NameOrder: order,
		Limit:     limit,
		Offset:    offset(page, limit),
	}, page, limit, nil
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.get")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	if !validID(id) {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// Profile returns the full record of the caller
func (s *userService) Profile(ctx context.Context, identity *domain.Identity) (*dto.ProfileResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.profile")
	defer span.End()

	if err := requireIdentity(identity); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", identity.ID))

	user, err := s.userRepo.GetByID(ctx, identity.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	postCount, err := s.postRepo.Count(ctx, &repository.PostFilter{AuthorID: user.ID})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.ProfileResponse{User: user, PostCount: postCount}, nil
}

// UpdateSelf updates the caller's name, email or password
func (s *userService) UpdateSelf(ctx context.Context, identity *domain.Identity, req *dto.UpdateUserRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.update_self")
	defer span.End()

	if err := requireIdentity(identity); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", identity.ID))

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, identity.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if exists {
			span.SetStatus(codes.Error, "email already in use")
			return nil, domain.ErrUserAlreadyExists
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.config.BcryptCost)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}
	user.UpdatedAt = time.Now()

	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !updated {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	publishBestEffort(ctx, s.publisher, domain.EventUserUpdated, user.ID, identity.ID, user)

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// DeleteSelf deletes the caller's account; their posts cascade
func (s *userService) DeleteSelf(ctx context.Context, identity *domain.Identity) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.delete_self")
	defer span.End()

	if err := requireIdentity(identity); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("user_id", identity.ID))

	if err := s.delete(ctx, identity.ID, identity.ID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeleteUser deletes any user; the route restricts it to administrators
func (s *userService) DeleteUser(ctx context.Context, actor *domain.Identity, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.delete")
	defer span.End()

	if err := requireIdentity(actor); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(
		attribute.String("user_id", id),
		attribute.String("actor_id", actor.ID),
	)

	if !validID(id) {
		span.SetStatus(codes.Error, "user not found")
		return domain.ErrUserNotFound
	}

	if err := s.delete(ctx, id, actor.ID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *userService) delete(ctx context.Context, id, actorID string) error {
	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrUserNotFound
	}
	publishBestEffort(ctx, s.publisher, domain.EventUserDeleted, id, actorID, nil)
	return nil
}

// ChangeRole sets a user's role
func (s *userService) ChangeRole(ctx context.Context, actor *domain.Identity, id string, req *dto.ChangeRoleRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.change_role")
	defer span.End()

	if err := requireIdentity(actor); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	role, err := req.Validate()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("user_id", id),
		attribute.String("role", string(role)),
	)

	if !validID(id) {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}
	if user.Role == role {
		span.SetStatus(codes.Ok, "")
		return user, nil
	}

	previous := user.Role
	user.Role = role
	user.UpdatedAt = time.Now()

	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !updated {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrUserNotFound
	}

	publishBestEffort(ctx, s.publisher, domain.EventUserRoleChanged, user.ID, actor.ID, map[string]string{
		"from": string(previous),
		"to":   string(role),
	})

	span.SetStatus(codes.Ok, "")
	return user, nil
}
