package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/postboard-api/internal/dto"
	"github.com/prohmpiriya/postboard-api/internal/middleware"
	"github.com/prohmpiriya/postboard-api/internal/service"
	"github.com/prohmpiriya/postboard-api/pkg/response"
)

// CookieConfig controls the attributes of the session cookie
type CookieConfig struct {
	Secure bool
	Domain string
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService service.AuthService
	cookie      CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessWithMessage("User registered successfully", user))
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.setTokenCookie(c, result.Token, int(h.authService.TokenTTL().Seconds()))
	c.JSON(http.StatusOK, response.SuccessWithMessage("Login successful", result))
}

// Logout handles user logout
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), caller); err != nil {
		writeError(c, err)
		return
	}

	h.clearTokenCookie(c)
	c.JSON(http.StatusOK, response.SuccessWithMessage("Logout successful", nil))
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	setTokenCookie(c, h.cookie, token, maxAge)
}

func (h *AuthHandler) clearTokenCookie(c *gin.Context) {
	setTokenCookie(c, h.cookie, "", -1)
}

// setTokenCookie writes the session cookie. Browsers drop SameSite=None
// cookies that are not also Secure.
func setTokenCookie(c *gin.Context, cfg CookieConfig, value string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.TokenCookieName, value, maxAge, "/", cfg.Domain, cfg.Secure, true)
}
