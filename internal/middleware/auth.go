package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/metrics"
	"github.com/prohmpiriya/postboard-api/pkg/logger"
	"github.com/prohmpiriya/postboard-api/pkg/response"
	"go.uber.org/zap"
)

// Context keys set by the guard
const (
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"
	ContextKeyEmail  = "email"
	ContextKeyRole   = "role"
)

// TokenCookieName is the cookie carrying the session token
const TokenCookieName = "token"

// Authenticator resolves a session token to a live user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// Guard protects routes with token authentication and an optional role set
type Guard struct {
	auth Authenticator
}

// NewGuard creates a Guard
func NewGuard(auth Authenticator) *Guard {
	return &Guard{auth: auth}
}

// Require authenticates the request and, when roles is non-empty, checks
// the caller holds one of them.
func (g *Guard) Require(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token := ExtractToken(c)
		if token == "" {
			metrics.RecordGuardRejection(ctx, "missing_token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized access"))
			return
		}

		identity, err := g.auth.Authenticate(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrTokenExpired):
				metrics.RecordGuardRejection(ctx, "invalid_token")
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid or expired token"))
			case errors.Is(err, domain.ErrUnauthorized):
				metrics.RecordGuardRejection(ctx, "unknown_user")
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized access"))
			default:
				logger.Get().WithContext(ctx).Error("Failed to authenticate request",
					zap.String("path", c.FullPath()),
					zap.Error(err),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.InternalError())
			}
			return
		}

		if !identity.HasRole(roles...) {
			metrics.RecordGuardRejection(ctx, "forbidden_role")
			c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden("You do not have permission to access this resource"))
			return
		}

		c.Set(ContextKeyUser, identity)
		c.Set(ContextKeyUserID, identity.ID)
		c.Set(ContextKeyEmail, identity.Email)
		c.Set(ContextKeyRole, string(identity.Role))
		c.Next()
	}
}

// ExtractToken reads the session cookie, falling back to a Bearer header
func ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie != "" {
		return cookie
	}

	const bearerPrefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return ""
}

// CurrentIdentity returns the identity stored by Require
func CurrentIdentity(c *gin.Context) (*domain.Identity, bool) {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*domain.Identity)
	return identity, ok && identity != nil
}
