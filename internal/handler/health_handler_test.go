package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		db         Pinger
		redis      Pinger
		wantStatus int
	}{
		{"db up, no redis", stubPinger{}, nil, http.StatusOK},
		{"db up, redis up", stubPinger{}, stubPinger{}, http.StatusOK},
		{"db down", stubPinger{err: errors.New("down")}, nil, http.StatusServiceUnavailable},
		{"redis down", stubPinger{}, stubPinger{err: errors.New("down")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("postboard-api", tt.db, tt.redis)
			router := gin.New()
			router.GET("/health", h.Health)
			router.GET("/ready", h.Ready)

			w := doJSON(router, http.MethodGet, "/health", nil, nil)
			assert.Equal(t, http.StatusOK, w.Code)

			w = doJSON(router, http.MethodGet, "/ready", nil, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "down")
		})
	}
}
