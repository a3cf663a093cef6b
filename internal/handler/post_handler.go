package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/postboard-api/internal/dto"
	"github.com/prohmpiriya/postboard-api/internal/service"
	"github.com/prohmpiriya/postboard-api/pkg/response"
)

// PostHandler handles post HTTP requests
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Create handles creating a post
// POST /api/v1/posts
func (h *PostHandler) Create(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessWithMessage("Post created successfully", post))
}

// List handles listing posts
// GET /api/v1/posts?page=&limit=&search=&sort=
func (h *PostHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	result, err := h.postService.ListPosts(c.Request.Context(), &q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(listMessage(len(result.Items), "posts"), result.Items, result.Pagination))
}

// ListByUser handles listing one author's posts
// GET /api/v1/posts/user/:id
func (h *PostHandler) ListByUser(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}

	result, err := h.postService.ListUserPosts(c.Request.Context(), c.Param("id"), &q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(listMessage(len(result.Items), "posts"), result.Items, result.Pagination))
}

// Get handles fetching a post by ID
// GET /api/v1/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(post))
}

// Update handles editing a post
// PATCH /api/v1/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage("Post updated successfully", post))
}

// Delete handles removing a post
// DELETE /api/v1/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithMessage("Post deleted successfully", nil))
}
