package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/postboard-api/internal/dto"
	"github.com/prohmpiriya/postboard-api/internal/service"
	"github.com/prohmpiriya/postboard-api/pkg/response"
)

// UserHandler handles user HTTP requests
type UserHandler struct {
	userService service.UserService
	cookie      CookieConfig
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, cookie CookieConfig) *UserHandler {
	return &UserHandler{userService: userService, cookie: cookie}
}

// List handles listing users
// GET /api/v1/users?page=&limit=&search=&sort=&filter=
func (h *UserHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), &q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(listMessage(len(result.Items), "users"), result.Items, result.Pagination))
}

// CurrentUser returns the identity resolved by the guard
// GET /api/v1/users/current-user
func (h *UserHandler) CurrentUser(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.Success(caller))
}

// Profile returns the caller's full record
// GET /api/v1/users/profile
func (h *UserHandler) Profile(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	profile, err := h.userService.Profile(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(profile))
}

// Get handles fetching a user by ID
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(user))
}

// Update updates the caller's account. The path id is not used: users
// can only edit themselves.
// PATCH /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateSelf(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage("User updated successfully", user))
}

// Delete removes the caller's account and ends the session
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteSelf(c.Request.Context(), caller); err != nil {
		writeError(c, err)
		return
	}

	setTokenCookie(c, h.cookie, "", -1)
	c.JSON(http.StatusOK, response.SuccessWithMessage("User deleted successfully", nil))
}

// AdminDelete removes any account
// DELETE /api/v1/admin/users/:id
func (h *UserHandler) AdminDelete(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage("User deleted successfully", nil))
}

// ChangeRole sets a user's role
// PATCH /api/v1/admin/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req dto.ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage("Role updated successfully", user))
}
