package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), &Config{Enabled: false, ServiceName: "test"})
	require.NoError(t, err)
	require.NotNil(t, tel)

	ctx, span := StartSpan(context.Background(), "service.test")
	defer span.End()
	RecordError(span, errors.New("boom"))

	assert.Equal(t, "", GetTraceID(ctx))
	assert.NoError(t, Shutdown(context.Background()))
}

func TestNewCounter_NoopProvider(t *testing.T) {
	c, err := NewCounter(MetricOpts{Name: "test_total", Description: "test", Unit: "1"})
	require.NoError(t, err)
	c.Inc(context.Background())
	c.Add(context.Background(), 3)

	h, err := NewHistogram(MetricOpts{Name: "test_seconds", Unit: "s"})
	require.NoError(t, err)
	h.Record(context.Background(), 0.25)
}

func TestTracingMiddleware_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TracingMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}
