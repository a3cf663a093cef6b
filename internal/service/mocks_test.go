package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/repository"
)

// mockUserRepository is an in-memory UserRepository. List and Count run
// concurrently, so access is locked.
type mockUserRepository struct {
	mu          sync.RWMutex
	users       map[string]*domain.User
	emailIndex  map[string]*domain.User
	createError   error
	listError     error
	identityError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:      make(map[string]*domain.User),
		emailIndex: make(map[string]*domain.User),
	}
}

func (r *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createError != nil {
		return r.createError
	}
	if _, exists := r.emailIndex[user.Email]; exists {
		return domain.ErrUserAlreadyExists
	}
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user
	return nil
}

func (r *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[id], nil
}

func (r *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailIndex[email], nil
}

func (r *mockUserRepository) GetIdentity(ctx context.Context, id string) (*domain.Identity, error) {
	if r.identityError != nil {
		return nil, r.identityError
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user := r.users[id]
	if user == nil {
		return nil, nil
	}
	return &domain.Identity{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}, nil
}

func (r *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.emailIndex[email]
	return exists, nil
}

func (r *mockUserRepository) Update(ctx context.Context, user *domain.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.users[user.ID]
	if !ok {
		return false, nil
	}
	delete(r.emailIndex, old.Email)
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user
	return true, nil
}

func (r *mockUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user := r.users[id]
	if user == nil {
		return false, nil
	}
	delete(r.emailIndex, user.Email)
	delete(r.users, id)
	return true, nil
}

func (r *mockUserRepository) matching(filter *repository.UserFilter) []*domain.User {
	var out []*domain.User
	term := strings.ToLower(filter.Search)
	for _, u := range r.users {
		if term != "" && !strings.Contains(strings.ToLower(u.Name), term) && !strings.Contains(strings.ToLower(u.Email), term) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		switch {
		case filter.NameOrder == repository.OrderAsc:
			return out[i].Name < out[j].Name
		case filter.NameOrder == repository.OrderDesc:
			return out[i].Name > out[j].Name
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
	return out
}

func (r *mockUserRepository) List(ctx context.Context, filter *repository.UserFilter) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.listError != nil {
		return nil, r.listError
	}
	return paginate(r.matching(filter), filter.Offset, filter.Limit), nil
}

func (r *mockUserRepository) Count(ctx context.Context, filter *repository.UserFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

// mockPostRepository is an in-memory PostRepository
type mockPostRepository struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
}

func newMockPostRepository() *mockPostRepository {
	return &mockPostRepository{posts: make(map[string]*domain.Post)}
}

func (r *mockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = post
	return nil
}

func (r *mockPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.posts[id], nil
}

func (r *mockPostRepository) UpdateOwned(ctx context.Context, id, authorID, content string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post := r.posts[id]
	if post == nil || post.AuthorID != authorID {
		return nil, nil
	}
	post.Content = content
	return post, nil
}

func (r *mockPostRepository) DeleteOwned(ctx context.Context, id, authorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post := r.posts[id]
	if post == nil || post.AuthorID != authorID {
		return false, nil
	}
	delete(r.posts, id)
	return true, nil
}

func (r *mockPostRepository) matching(filter *repository.PostFilter) []*domain.Post {
	var out []*domain.Post
	term := strings.ToLower(filter.Search)
	for _, p := range r.posts {
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Content), term) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *mockPostRepository) List(ctx context.Context, filter *repository.PostFilter) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.matching(filter), filter.Offset, filter.Limit), nil
}

func (r *mockPostRepository) Count(ctx context.Context, filter *repository.PostFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// publishedEvent records one call to the mock publisher
type publishedEvent struct {
	Type        domain.EventType
	AggregateID string
	ActorID     string
}

// MockEventPublisher records published events for assertions
type MockEventPublisher struct {
	mu           sync.Mutex
	Events       []publishedEvent
	PublishError error
}

func (m *MockEventPublisher) Publish(ctx context.Context, eventType domain.EventType, aggregateID, actorID string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishError != nil {
		return m.PublishError
	}
	m.Events = append(m.Events, publishedEvent{Type: eventType, AggregateID: aggregateID, ActorID: actorID})
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventType, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Type)
	}
	return out
}

var errDatabase = errors.New("connection refused")
