package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/middleware"
	"github.com/prohmpiriya/postboard-api/pkg/logger"
	"github.com/prohmpiriya/postboard-api/pkg/response"
	"go.uber.org/zap"
)

// writeError maps a service error to its status code and envelope
func writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, response.ValidationError(verr.Error()))
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusNotFound, response.Error("INVALID_CREDENTIALS", "Invalid credentials"))
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("User not found"))
	case errors.Is(err, domain.ErrPostNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Post not found"))
	case domain.IsConflictError(err):
		c.JSON(http.StatusConflict, response.Conflict("User with this email already exists"))
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid or expired token"))
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized access"))
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, response.Forbidden("You do not have permission to access this resource"))
	default:
		logger.Get().WithContext(c.Request.Context()).Error("Request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, response.InternalError())
	}
}

// bindJSON decodes the request body, answering 400 on malformed input
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return false
	}
	return true
}

// identity returns the caller set by the guard, answering 401 if absent
func identity(c *gin.Context) (*domain.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized access"))
		return nil, false
	}
	return id, true
}

func listMessage(n int, noun string) string {
	if n == 0 {
		return "No " + noun + " found"
	}
	return strings.ToUpper(noun[:1]) + noun[1:] + " retrieved successfully"
}
