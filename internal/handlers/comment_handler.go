package handlers

import (
	"net/http"

	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	posts *service.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(posts *service.PostService) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetCommentsByPostID)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.posts.Comment(c.Request().Context(), currentUserID, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, comment)
}

// GetCommentsByPostID lists a post's comments, oldest first
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	comments, err := h.posts.Comments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"comments": comments})
}

// DeleteComment deletes a comment written by the caller
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	commentID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.posts.DeleteComment(c.Request().Context(), currentUserID, commentID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"deleted": true})
}
