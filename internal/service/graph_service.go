package service

import (
	"context"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/metrics"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/repositories"
	"go.uber.org/zap"
)

const FeedLimit = 100

// FollowStats is returned next to follow lists.
type FollowStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// GraphService manages follow edges and composes feeds from them.
type GraphService struct {
	tx       repositories.Transactor
	follows  repositories.FollowRepository
	users    repositories.UserRepository
	posts    repositories.PostRepository
	agg      *Aggregator
	notifier *NotificationService
	logger   *zap.Logger
}

func NewGraphService(
	tx repositories.Transactor,
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	posts repositories.PostRepository,
	agg *Aggregator,
	notifier *NotificationService,
	logger *zap.Logger,
) *GraphService {
	return &GraphService{
		tx:       tx,
		follows:  follows,
		users:    users,
		posts:    posts,
		agg:      agg,
		notifier: notifier,
		logger:   logger,
	}
}

// Follow inserts the edge idempotently. Only a newly created edge notifies
// the target, and the edge and its notification commit together.
func (s *GraphService) Follow(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return apperrors.Invalid("you cannot follow yourself")
	}
	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return apperrors.Server(err, "failed to load user")
	}
	if !exists {
		return apperrors.NotFound("user not found")
	}

	var (
		created bool
		note    *models.Notification
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.follows.CreateFollow(ctx, &models.Follow{FollowerID: actorID, FollowingID: targetID})
		if err != nil || !created {
			return err
		}
		note, err = s.notifier.Record(ctx, targetID, actorID, FollowEvent{})
		return err
	})
	if err != nil {
		return apperrors.Server(err, "failed to follow user")
	}
	if !created {
		metrics.IdempotentNoops.WithLabelValues("follow").Inc()
		return nil
	}
	s.notifier.Published(ctx, note)
	return nil
}

func (s *GraphService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	if _, err := s.follows.DeleteFollow(ctx, actorID, targetID); err != nil {
		return apperrors.Server(err, "failed to unfollow user")
	}
	return nil
}

func (s *GraphService) Following(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	users, err := s.follows.GetFollowing(ctx, userID)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load following")
	}
	return compactUsers(users), nil
}

func (s *GraphService) Followers(ctx context.Context, userID uint) ([]models.UserCompact, error) {
	users, err := s.follows.GetFollowers(ctx, userID)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load followers")
	}
	return compactUsers(users), nil
}

func (s *GraphService) Stats(ctx context.Context, userID uint) (FollowStats, error) {
	var stats FollowStats
	var err error
	if stats.Followers, err = s.follows.GetFollowersCount(ctx, userID); err != nil {
		return stats, apperrors.Server(err, "failed to count followers")
	}
	if stats.Following, err = s.follows.GetFollowingCount(ctx, userID); err != nil {
		return stats, apperrors.Server(err, "failed to count following")
	}
	return stats, nil
}

// FollowingFeed returns posts by the actor and everyone the actor follows.
func (s *GraphService) FollowingFeed(ctx context.Context, actorID uint) ([]models.FeedPost, error) {
	ids, err := s.follows.GetFollowingIDs(ctx, actorID)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load following")
	}
	ids = append(ids, actorID)

	posts, err := s.posts.GetPostsByUserIDs(ctx, ids, FeedLimit)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load feed")
	}
	return s.agg.Decorate(ctx, actorID, posts)
}

func (s *GraphService) ExploreFeed(ctx context.Context, viewerID uint) ([]models.FeedPost, error) {
	posts, err := s.posts.GetAllPosts(ctx, FeedLimit)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load feed")
	}
	return s.agg.Decorate(ctx, viewerID, posts)
}

func compactUsers(users []models.User) []models.UserCompact {
	out := make([]models.UserCompact, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToCompact())
	}
	return out
}
