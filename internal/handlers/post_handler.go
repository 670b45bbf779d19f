package handlers

import (
	"net/http"

	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// PostHandler handles post and reel HTTP requests
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a post or a reel
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.CreatePost(c.Request().Context(), currentUserID, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, post)
}

// GetPost returns a post with its counters
func (h *PostHandler) GetPost(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	post, err := h.posts.GetPost(c.Request().Context(), currentUserID, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, post)
}

// DeletePost deletes a post owned by the caller
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}
