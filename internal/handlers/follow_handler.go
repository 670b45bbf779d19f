package handlers

import (
	"net/http"

	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	graph *service.GraphService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *service.GraphService) *FollowHandler {
	return &FollowHandler{graph: graph}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/follows/following", h.GetFollowing)
	g.GET("/follows/followers", h.GetFollowers)
	g.POST("/follows/:userId", h.FollowUser)
	g.DELETE("/follows/:userId", h.UnfollowUser)
}

// FollowUser follows a user. Following someone twice is a no-op.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	targetID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}
	if err := h.graph.Follow(c.Request().Context(), currentUserID, targetID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"following": true})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	targetID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}
	if err := h.graph.Unfollow(c.Request().Context(), currentUserID, targetID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"following": false})
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	users, err := h.graph.Following(ctx, currentUserID)
	if err != nil {
		return err
	}
	stats, err := h.graph.Stats(ctx, currentUserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"users": users, "stats": stats})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	users, err := h.graph.Followers(ctx, currentUserID)
	if err != nil {
		return err
	}
	stats, err := h.graph.Stats(ctx, currentUserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"users": users, "stats": stats})
}
