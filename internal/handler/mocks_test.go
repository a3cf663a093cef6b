package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/dto"
	"github.com/prohmpiriya/postboard-api/internal/middleware"
	"github.com/prohmpiriya/postboard-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, identity *domain.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockAuthService) TokenTTL() time.Duration {
	return 15 * 24 * time.Hour
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context, q *dto.ListQuery) (*service.Page[*domain.User], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Page[*domain.User]), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Profile(ctx context.Context, identity *domain.Identity) (*dto.ProfileResponse, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProfileResponse), args.Error(1)
}

func (m *MockUserService) UpdateSelf(ctx context.Context, identity *domain.Identity, req *dto.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) DeleteSelf(ctx context.Context, identity *domain.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, actor *domain.Identity, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockUserService) ChangeRole(ctx context.Context, actor *domain.Identity, id string, req *dto.ChangeRoleRequest) (*domain.User, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockPostService is a mock implementation of PostService
type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) CreatePost(ctx context.Context, identity *domain.Identity, req *dto.CreatePostRequest) (*domain.Post, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostService) ListPosts(ctx context.Context, q *dto.ListQuery) (*service.Page[*domain.Post], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Page[*domain.Post]), args.Error(1)
}

func (m *MockPostService) ListUserPosts(ctx context.Context, userID string, q *dto.ListQuery) (*service.Page[*domain.Post], error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Page[*domain.Post]), args.Error(1)
}

func (m *MockPostService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostService) UpdatePost(ctx context.Context, identity *domain.Identity, id string, req *dto.UpdatePostRequest) (*domain.Post, error) {
	args := m.Called(ctx, identity, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostService) DeletePost(ctx context.Context, identity *domain.Identity, id string) error {
	args := m.Called(ctx, identity, id)
	return args.Error(0)
}

// withTestIdentity plays the guard: X-User-ID and X-User-Role become the caller
func withTestIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			role := domain.Role(c.GetHeader("X-User-Role"))
			if role == "" {
				role = domain.RoleUser
			}
			c.Set(middleware.ContextKeyUser, &domain.Identity{ID: userID, Email: userID + "@example.com", Role: role})
			c.Set(middleware.ContextKeyUserID, userID)
		}
		c.Next()
	}
}
