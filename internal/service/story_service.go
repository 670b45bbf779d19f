package service

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/metrics"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	// StoryTTL is fixed; stories are not configurable per post.
	StoryTTL       = 24 * time.Hour
	StoryListLimit = 200
)

// StoryService handles ephemeral stories. Expired stories stay in storage
// until purged and are filtered out of every read.
type StoryService struct {
	stories repositories.StoryRepository
	follows repositories.FollowRepository
	users   repositories.UserRepository
	logger  *zap.Logger
	now     Clock
}

func NewStoryService(
	stories repositories.StoryRepository,
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	logger *zap.Logger,
	clock Clock,
) *StoryService {
	return &StoryService{
		stories: stories,
		follows: follows,
		users:   users,
		logger:  logger,
		now:     clockOrDefault(clock),
	}
}

func (s *StoryService) Create(ctx context.Context, ownerID uint, req models.CreateStoryRequest) (*models.Story, error) {
	if strings.TrimSpace(req.Media) == "" {
		return nil, apperrors.Invalid("media is required")
	}
	if req.MediaType != "image" && req.MediaType != "video" {
		return nil, apperrors.Invalid("media_type must be image or video")
	}
	now := s.now()
	story := &models.Story{
		UserID:    ownerID,
		MediaRef:  req.Media,
		MediaType: req.MediaType,
		Audio:     req.Audio,
		Caption:   req.Caption,
		CreatedAt: now,
		ExpiresAt: now.Add(StoryTTL),
	}
	if err := s.stories.CreateStory(ctx, story); err != nil {
		return nil, apperrors.Server(err, "failed to create story")
	}
	return story, nil
}

// List returns unexpired stories by the viewer and everyone the viewer
// follows, newest first.
func (s *StoryService) List(ctx context.Context, viewerID uint) ([]models.StoryFeedItem, error) {
	ownerIDs, err := s.follows.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load following")
	}
	ownerIDs = append(ownerIDs, viewerID)

	stories, err := s.stories.GetVisibleStories(ctx, ownerIDs, s.now(), StoryListLimit)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load stories")
	}

	storyIDs := make([]uint, 0, len(stories))
	authorIDs := make([]uint, 0, len(stories))
	for _, st := range stories {
		storyIDs = append(storyIDs, st.ID)
		authorIDs = append(authorIDs, st.UserID)
	}
	seen, err := s.stories.GetSeenStoryIDs(ctx, viewerID, storyIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load story views")
	}
	liked, err := s.stories.GetLikedStoryIDs(ctx, viewerID, storyIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load story likes")
	}
	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load authors")
	}

	items := make([]models.StoryFeedItem, 0, len(stories))
	for _, st := range stories {
		item := models.StoryFeedItem{
			Story:      st,
			Author:     models.UserCompact{ID: st.UserID},
			ViewedByMe: seen[st.ID],
			LikedByMe:  liked[st.ID],
		}
		if a, ok := authors[st.UserID]; ok {
			item.Author = a.ToCompact()
		}
		items = append(items, item)
	}
	return items, nil
}

// RecordView is idempotent per viewer and story.
func (s *StoryService) RecordView(ctx context.Context, viewerID, storyID uint) error {
	if _, err := s.visible(ctx, viewerID, storyID); err != nil {
		return err
	}
	created, err := s.stories.MarkSeen(ctx, &models.StoryView{StoryID: storyID, UserID: viewerID, ViewedAt: s.now()})
	if err != nil {
		return apperrors.Server(err, "failed to record view")
	}
	if !created {
		metrics.IdempotentNoops.WithLabelValues("story_view").Inc()
	}
	return nil
}

// ToggleLike likes the story, or removes the like if one exists. It returns
// the resulting state.
func (s *StoryService) ToggleLike(ctx context.Context, viewerID, storyID uint) (bool, error) {
	if _, err := s.visible(ctx, viewerID, storyID); err != nil {
		return false, err
	}
	added, err := s.stories.AddLike(ctx, &models.StoryLike{StoryID: storyID, UserID: viewerID, CreatedAt: s.now()})
	if err != nil {
		return false, apperrors.Server(err, "failed to like story")
	}
	if added {
		return true, nil
	}
	if _, err := s.stories.RemoveLike(ctx, storyID, viewerID); err != nil {
		return false, apperrors.Server(err, "failed to unlike story")
	}
	return false, nil
}

// PurgeExpired physically deletes stories that expired more than olderThan
// ago. Reads never depend on it.
func (s *StoryService) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, apperrors.Invalid("older-than must not be negative")
	}
	cutoff := s.now().Add(-olderThan)
	n, err := s.stories.DeleteExpiredStories(ctx, cutoff)
	if err != nil {
		return 0, apperrors.Server(err, "failed to purge stories")
	}
	s.logger.Info("expired stories purged", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	return n, nil
}

func (s *StoryService) visible(ctx context.Context, viewerID, storyID uint) (*models.Story, error) {
	story, err := s.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return nil, apperrors.Lookup(err, "story")
	}
	if !s.now().Before(story.ExpiresAt) {
		return nil, apperrors.NotFound("story not found")
	}
	if story.UserID == viewerID {
		return story, nil
	}
	following, err := s.follows.IsFollowing(ctx, viewerID, story.UserID)
	if err != nil {
		return nil, apperrors.Server(err, "failed to check follow")
	}
	if !following {
		return nil, apperrors.NotFound("story not found")
	}
	return story, nil
}
