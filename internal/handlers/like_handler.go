package handlers

import (
	"net/http"

	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like-related HTTP requests
type LikeHandler struct {
	posts *service.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(posts *service.PostService) *LikeHandler {
	return &LikeHandler{posts: posts}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/likes", h.LikePost)
	g.DELETE("/posts/:id/likes", h.UnlikePost)
	g.GET("/posts/:id/stats", h.GetPostStats)
}

// LikePost likes a post. Liking twice is a no-op.
func (h *LikeHandler) LikePost(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.posts.Like(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return err
	}
	return h.respondStats(c, currentUserID)
}

// UnlikePost removes the caller's like from a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.posts.Unlike(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return err
	}
	return h.respondStats(c, currentUserID)
}

// GetPostStats returns like and comment counts and the caller's like flag.
func (h *LikeHandler) GetPostStats(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	return h.respondStats(c, currentUserID)
}

func (h *LikeHandler) respondStats(c echo.Context, viewerID uint) error {
	stats, err := h.posts.Stats(c.Request().Context(), viewerID, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, stats)
}
