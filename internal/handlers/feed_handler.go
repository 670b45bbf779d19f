package handlers

import (
	"net/http"

	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	graph *service.GraphService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(graph *service.GraphService) *FeedHandler {
	return &FeedHandler{graph: graph}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/feed/explore", h.GetExploreFeed)
}

// GetFeed returns posts by the caller and the people they follow.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	posts, err := h.graph.FollowingFeed(c.Request().Context(), currentUserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"posts": posts})
}

func (h *FeedHandler) GetExploreFeed(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	posts, err := h.graph.ExploreFeed(c.Request().Context(), currentUserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"posts": posts})
}
