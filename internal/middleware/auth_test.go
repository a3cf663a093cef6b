package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthenticator maps tokens to identities or errors
type fakeAuthenticator struct {
	identities map[string]*domain.Identity
	errs       map[string]error
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if err, ok := f.errs[token]; ok {
		return nil, err
	}
	if id, ok := f.identities[token]; ok {
		return id, nil
	}
	return nil, domain.ErrInvalidToken
}

func setupGuardRouter(roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := &fakeAuthenticator{
		identities: map[string]*domain.Identity{
			"user-token":  {ID: "u1", Email: "u@example.com", Role: domain.RoleUser},
			"admin-token": {ID: "a1", Email: "a@example.com", Role: domain.RoleAdmin},
		},
		errs: map[string]error{
			"expired-token": domain.ErrTokenExpired,
			"ghost-token":   domain.ErrUnauthorized,
			"db-down-token": errors.New("connection refused"),
		},
	}

	r := gin.New()
	r.GET("/protected", NewGuard(auth).Require(roles...), func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": identity.ID, "user_id": c.GetString(ContextKeyUserID), "role": c.GetString(ContextKeyRole)})
	})
	return r
}

func TestGuard_Require(t *testing.T) {
	tests := []struct {
		name       string
		roles      []domain.Role
		cookie     string
		header     string
		wantStatus int
		wantCode   string
		wantID     string
	}{
		{name: "no token", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "malformed header", header: "Token user-token", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "invalid token", cookie: "garbage", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "expired token", header: "Bearer expired-token", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "user no longer exists", cookie: "ghost-token", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "lookup failure", cookie: "db-down-token", wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
		{name: "cookie any role", cookie: "user-token", wantStatus: http.StatusOK, wantID: "u1"},
		{name: "bearer any role", header: "Bearer user-token", wantStatus: http.StatusOK, wantID: "u1"},
		{name: "cookie wins over header", cookie: "admin-token", header: "Bearer user-token", wantStatus: http.StatusOK, wantID: "a1"},
		{name: "role denied", roles: []domain.Role{domain.RoleAdmin}, cookie: "user-token", wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "role allowed", roles: []domain.Role{domain.RoleAdmin}, cookie: "admin-token", wantStatus: http.StatusOK, wantID: "a1"},
		{name: "one of several roles", roles: []domain.Role{domain.RoleUser, domain.RoleAdmin}, header: "Bearer user-token", wantStatus: http.StatusOK, wantID: "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupGuardRouter(tt.roles...)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantCode != "" {
				var resp response.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.False(t, resp.Success)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
			}
			if tt.wantID != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantID, body["id"])
				assert.Equal(t, tt.wantID, body["user_id"])
			}
		})
	}
}

func TestCurrentIdentity_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := CurrentIdentity(c)
	assert.False(t, ok)
}
