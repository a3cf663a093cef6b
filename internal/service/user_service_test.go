package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, repo *mockUserRepository, name, email string, role domain.Role, createdAt time.Time) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$04$placeholder",
		Role:         role,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func identityOf(u *domain.User) *domain.Identity {
	return &domain.Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func newTestUserService() (UserService, *mockUserRepository, *mockPostRepository, *MockEventPublisher) {
	userRepo := newMockUserRepository()
	postRepo := newMockPostRepository()
	publisher := &MockEventPublisher{}
	svc := NewUserService(userRepo, postRepo, publisher, &UserServiceConfig{BcryptCost: bcrypt.MinCost})
	return svc, userRepo, postRepo, publisher
}

func TestUserService_ListUsers_Pagination(t *testing.T) {
	svc, userRepo, _, _ := newTestUserService()
	base := time.Now()
	for i := 0; i < 25; i++ {
		seedUser(t, userRepo, fmt.Sprintf("user%02d", i), fmt.Sprintf("user%02d@example.com", i), domain.RoleUser, base.Add(time.Duration(i)*time.Second))
	}

	tests := []struct {
		page     string
		wantLen  int
		wantNext bool
		wantPrev bool
	}{
		{"1", 10, true, false},
		{"2", 10, true, true},
		{"3", 5, false, true},
		{"4", 0, false, true},
	}

	for _, tt := range tests {
		t.Run("page "+tt.page, func(t *testing.T) {
			result, err := svc.ListUsers(context.Background(), &dto.ListQuery{Page: tt.page, Limit: "10"})
			require.NoError(t, err)
			assert.Len(t, result.Items, tt.wantLen)
			assert.Equal(t, int64(25), result.Pagination.TotalCount)
			assert.Equal(t, 3, result.Pagination.TotalPages)
			assert.Equal(t, tt.wantNext, result.Pagination.HasNextPage)
			assert.Equal(t, tt.wantPrev, result.Pagination.HasPrevPage)
		})
	}
}

func TestUserService_ListUsers_SearchAndOrder(t *testing.T) {
	svc, userRepo, _, _ := newTestUserService()
	now := time.Now()
	seedUser(t, userRepo, "Charlie", "charlie@example.com", domain.RoleUser, now)
	seedUser(t, userRepo, "alice", "alice@example.com", domain.RoleUser, now.Add(time.Second))
	seedUser(t, userRepo, "Bob", "bob@corp.io", domain.RoleAdmin, now.Add(2*time.Second))

	result, err := svc.ListUsers(context.Background(), &dto.ListQuery{Search: "EXAMPLE"})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)

	result, err = svc.ListUsers(context.Background(), &dto.ListQuery{})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "Bob", result.Items[0].Name)

	result, err = svc.ListUsers(context.Background(), &dto.ListQuery{Search: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Pagination.TotalPages)
}

func TestUserService_ListUsers_InvalidQuery(t *testing.T) {
	svc, _, _, _ := newTestUserService()

	for _, q := range []*dto.ListQuery{
		{Page: "x"},
		{Limit: "0"},
		{Sort: "password_hash"},
		{Filter: "sideways"},
		{Page: "9223372036854775807", Limit: "10"},
	} {
		_, err := svc.ListUsers(context.Background(), q)
		assert.True(t, domain.IsValidationError(err), "query %+v: got %v", q, err)
	}
}

func TestUserFilterFromQuery_OffsetNeverNegative(t *testing.T) {
	_, _, _, err := userFilterFromQuery(&dto.ListQuery{Page: "9223372036854775807", Limit: "10"})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	filter, page, limit, err := userFilterFromQuery(&dto.ListQuery{Page: "4", Limit: "25"})
	require.NoError(t, err)
	assert.Equal(t, 4, page)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 75, filter.Offset)
}

func TestUserService_ListUsers_RepositoryError(t *testing.T) {
	svc, userRepo, _, _ := newTestUserService()
	userRepo.listError = errDatabase

	_, err := svc.ListUsers(context.Background(), nil)
	assert.ErrorIs(t, err, errDatabase)
}

func TestUserService_GetUser(t *testing.T) {
	svc, userRepo, _, _ := newTestUserService()
	user := seedUser(t, userRepo, "Jane", "jane@example.com", domain.RoleUser, time.Now())

	got, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.GetUser(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.GetUser(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_Profile(t *testing.T) {
	svc, userRepo, postRepo, _ := newTestUserService()
	user := seedUser(t, userRepo, "Jane", "jane@example.com", domain.RoleUser, time.Now())
	other := seedUser(t, userRepo, "Joe", "joe@example.com", domain.RoleUser, time.Now())
	for _, author := range []string{user.ID, user.ID, other.ID} {
		require.NoError(t, postRepo.Create(context.Background(), &domain.Post{ID: uuid.New().String(), AuthorID: author, Content: "x"}))
	}

	profile, err := svc.Profile(context.Background(), identityOf(user))
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, int64(2), profile.PostCount)

	_, err = svc.Profile(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUserService_UpdateSelf(t *testing.T) {
	str := func(s string) *string { return &s }
	ctx := context.Background()

	t.Run("updates name and password", func(t *testing.T) {
		svc, userRepo, _, publisher := newTestUserService()
		user := seedUser(t, userRepo, "Jane", "jane@example.com", domain.RoleUser, time.Now())

		updated, err := svc.UpdateSelf(ctx, identityOf(user), &dto.UpdateUserRequest{
			Name:     str("Jane Doe"),
			Password: str("NewPass1!"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", updated.Name)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("NewPass1!")))
		assert.Equal(t, []domain.EventType{domain.EventUserUpdated}, publisher.types())
	})

	t.Run("email taken", func(t *testing.T) {
		svc, userRepo, _, _ := newTestUserService()
		user := seedUser(t, userRepo, "Jane", "jane@example.com", domain.RoleUser, time.Now())
		seedUser(t, userRepo, "Joe", "joe@example.com", domain.RoleUser, time.Now())

		_, err := svc.UpdateSelf(ctx, identityOf(user), &dto.UpdateUserRequest{Email: str("JOE@example.com")})
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	t.Run("same email is not a conflict", func(t *testing.T) {
		svc, userRepo, _, _ := newTestUserService()
		user := seedUser(t, userRepo, "Jane", "jane@example.com", domain.RoleUser, time.Now())

		_, err := svc.UpdateSelf(ctx, identityOf(user), &dto.UpdateUserRequest{Email: str("jane@example.com")})
		assert.NoError(t, err)
	})

	t.Run("empty body", func(t *testing.T) {
		svc, userRepo, _, _ := newTestUserService()
		user := seedUser(t, userRepo, "Jane", "jane@example.com", domain.RoleUser, time.Now())

		_, err := svc.UpdateSelf(ctx, identityOf(user), &dto.UpdateUserRequest{})
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("caller gone", func(t *testing.T) {
		svc, _, _, _ := newTestUserService()
		_, err := svc.UpdateSelf(ctx, &domain.Identity{ID: uuid.New().String()}, &dto.UpdateUserRequest{Name: str("x")})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserService_DeleteSelf(t *testing.T) {
	svc, userRepo, _, publisher := newTestUserService()
	user := seedUser(t, userRepo, "Jane", "jane@example.com", domain.RoleUser, time.Now())

	require.NoError(t, svc.DeleteSelf(context.Background(), identityOf(user)))
	got, _ := userRepo.GetByID(context.Background(), user.ID)
	assert.Nil(t, got)
	assert.Equal(t, []domain.EventType{domain.EventUserDeleted}, publisher.types())

	err := svc.DeleteSelf(context.Background(), identityOf(user))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	svc, userRepo, _, _ := newTestUserService()
	admin := seedUser(t, userRepo, "Admin", "admin@example.com", domain.RoleAdmin, time.Now())
	target := seedUser(t, userRepo, "Jane", "jane@example.com", domain.RoleUser, time.Now())

	require.NoError(t, svc.DeleteUser(context.Background(), identityOf(admin), target.ID))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), identityOf(admin), target.ID), domain.ErrUserNotFound)
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), identityOf(admin), "bogus"), domain.ErrUserNotFound)
}

func TestUserService_ChangeRole(t *testing.T) {
	svc, userRepo, _, publisher := newTestUserService()
	admin := seedUser(t, userRepo, "Admin", "admin@example.com", domain.RoleAdmin, time.Now())
	target := seedUser(t, userRepo, "Jane", "jane@example.com", domain.RoleUser, time.Now())

	updated, err := svc.ChangeRole(context.Background(), identityOf(admin), target.ID, &dto.ChangeRoleRequest{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Equal(t, []domain.EventType{domain.EventUserRoleChanged}, publisher.types())

	// unchanged role publishes nothing
	_, err = svc.ChangeRole(context.Background(), identityOf(admin), target.ID, &dto.ChangeRoleRequest{Role: "ADMIN"})
	require.NoError(t, err)
	assert.Len(t, publisher.types(), 1)

	_, err = svc.ChangeRole(context.Background(), identityOf(admin), target.ID, &dto.ChangeRoleRequest{Role: "ROOT"})
	assert.True(t, domain.IsValidationError(err))

	_, err = svc.ChangeRole(context.Background(), identityOf(admin), uuid.New().String(), &dto.ChangeRoleRequest{Role: "USER"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
