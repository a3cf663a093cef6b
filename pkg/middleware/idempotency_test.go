package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// memoryRedis is an in-memory RedisClient
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: make(map[string]string)}
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (m *memoryRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func setupIdempotencyRouter(store RedisClient, status *int, calls *int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Next()
	})
	r.POST("/posts", Idempotency(DefaultIdempotencyConfig(store)), func(c *gin.Context) {
		*calls++
		c.JSON(*status, gin.H{"call": *calls})
	})
	return r
}

func post(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	status, calls := http.StatusCreated, 0
	r := setupIdempotencyRouter(newMemoryRedis(), &status, &calls)

	first := post(r, "key-1", `{"content":"hello"}`)
	second := post(r, "key-1", `{"content":"hello"}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayHeader))
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	status, calls := http.StatusCreated, 0
	r := setupIdempotencyRouter(newMemoryRedis(), &status, &calls)

	post(r, "", `{"content":"hello"}`)
	post(r, "", `{"content":"hello"}`)

	assert.Equal(t, 2, calls)
}

func TestIdempotency_KeyReusedWithDifferentBody(t *testing.T) {
	status, calls := http.StatusCreated, 0
	r := setupIdempotencyRouter(newMemoryRedis(), &status, &calls)

	post(r, "key-1", `{"content":"hello"}`)
	w := post(r, "key-1", `{"content":"different"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	assert.Equal(t, 1, calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	store := newMemoryRedis()
	status, calls := http.StatusCreated, 0
	r := setupIdempotencyRouter(store, &status, &calls)

	body := `{"content":"hello"}`
	record := &IdempotencyRecord{
		Key:         "key-1",
		Status:      StatusProcessing,
		RequestHash: generateRequestHash(http.MethodPost, "/posts", "u1", []byte(body)),
	}
	assert.True(t, trySetIdempotencyRecord(context.Background(), store, IdempotencyKeyPrefix+"u1:key-1", record, time.Minute))

	w := post(r, "key-1", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, calls)
}

func TestIdempotency_ServerErrorNotStored(t *testing.T) {
	status, calls := http.StatusInternalServerError, 0
	r := setupIdempotencyRouter(newMemoryRedis(), &status, &calls)

	post(r, "key-1", `{"content":"hello"}`)
	status = http.StatusCreated
	w := post(r, "key-1", `{"content":"hello"}`)

	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestIdempotency_OversizedKey(t *testing.T) {
	status, calls := http.StatusCreated, 0
	r := setupIdempotencyRouter(newMemoryRedis(), &status, &calls)

	w := post(r, strings.Repeat("k", 200), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, calls)
}
