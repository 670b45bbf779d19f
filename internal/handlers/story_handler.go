package handlers

import (
	"net/http"

	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	stories *service.StoryService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories *service.StoryService) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.POST("/stories", h.CreateStory)
	g.POST("/stories/:id/views", h.MarkAsSeen)
	g.POST("/stories/:id/likes", h.ToggleLike)
}

// CreateStory posts a story that expires after 24 hours
func (h *StoryHandler) CreateStory(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	story, err := h.stories.Create(c.Request().Context(), currentUserID, req)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, story)
}

// GetStories returns active stories from the caller and followed users
func (h *StoryHandler) GetStories(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	stories, err := h.stories.List(c.Request().Context(), currentUserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"stories": stories})
}

// MarkAsSeen records that the caller viewed a story
func (h *StoryHandler) MarkAsSeen(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	storyID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.stories.RecordView(c.Request().Context(), currentUserID, storyID); err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"viewed": true})
}

func (h *StoryHandler) ToggleLike(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	storyID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	liked, err := h.stories.ToggleLike(c.Request().Context(), currentUserID, storyID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"liked": liked})
}
