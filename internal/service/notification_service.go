package service

import (
	"context"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/cache"
	"github.com/anonto42/socialcore/backend/internal/metrics"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

// NotificationService is the fan-out engine. Every other service reports
// qualifying events through Notify.
type NotificationService struct {
	repo   repositories.NotificationRepository
	users  repositories.UserRepository
	posts  repositories.PostRepository
	groups repositories.GroupRepository
	unread *cache.UnreadCache
	logger *zap.Logger
	now    Clock
}

func NewNotificationService(
	repo repositories.NotificationRepository,
	users repositories.UserRepository,
	posts repositories.PostRepository,
	groups repositories.GroupRepository,
	unread *cache.UnreadCache,
	logger *zap.Logger,
	clock Clock,
) *NotificationService {
	return &NotificationService{
		repo:   repo,
		users:  users,
		posts:  posts,
		groups: groups,
		unread: unread,
		logger: logger,
		now:    clockOrDefault(clock),
	}
}

// Notify inserts one notification for recipient. It never deduplicates, and
// it is a no-op when the actor is the recipient.
func (s *NotificationService) Notify(ctx context.Context, recipientID, actorID uint, event Event) error {
	n, err := s.Record(ctx, recipientID, actorID, event)
	if err != nil {
		return err
	}
	s.Published(ctx, n)
	return nil
}

// Record inserts the notification row only. Called inside a transaction the
// row commits or rolls back with the triggering write; the caller runs
// Published after commit. It returns nil when the actor is the recipient.
func (s *NotificationService) Record(ctx context.Context, recipientID, actorID uint, event Event) (*models.Notification, error) {
	if recipientID == actorID {
		return nil, nil
	}
	n := &models.Notification{
		UserID:    recipientID,
		ActorID:   actorID,
		Type:      event.Type(),
		CreatedAt: s.now(),
	}
	event.apply(n)

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, apperrors.Server(err, "failed to create notification")
	}
	return n, nil
}

// Published counts a committed notification and evicts the recipient's
// cached unread count. A nil n is ignored.
func (s *NotificationService) Published(ctx context.Context, n *models.Notification) {
	if n == nil {
		return
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	s.invalidate(ctx, n.UserID)
	s.logger.Debug("notification created",
		zap.Uint("recipient_id", n.UserID),
		zap.Uint("actor_id", n.ActorID),
		zap.String("type", string(n.Type)),
	)
}

// List returns the newest notifications joined with actor, post and group
// display data.
func (s *NotificationService) List(ctx context.Context, userID uint, limit int) ([]models.NotificationView, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	rows, err := s.repo.GetByRecipientID(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load notifications")
	}

	var actorIDs, groupIDs []uint
	var postIDs []string
	for _, n := range rows {
		actorIDs = append(actorIDs, n.ActorID)
		if n.PostID != nil {
			postIDs = append(postIDs, *n.PostID)
		}
		if n.GroupID != nil {
			groupIDs = append(groupIDs, *n.GroupID)
		}
	}

	actors, err := s.users.GetUsersByIDs(ctx, actorIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load notification actors")
	}
	posts, err := s.posts.GetPostsByIDs(ctx, postIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load notification posts")
	}
	groups, err := s.groups.FindByIDs(ctx, groupIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load notification groups")
	}

	views := make([]models.NotificationView, 0, len(rows))
	for _, n := range rows {
		view := models.NotificationView{Notification: n}
		if actor, ok := actors[n.ActorID]; ok {
			view.Actor = actor.ToCompact()
		} else {
			view.Actor = models.UserCompact{ID: n.ActorID}
		}
		if n.PostID != nil {
			if post, ok := posts[*n.PostID]; ok {
				view.PostThumbnail = post.MediaURL
			}
		}
		if n.GroupID != nil {
			if group, ok := groups[*n.GroupID]; ok {
				view.GroupName = group.Name
				view.GroupThumbnail = group.Picture
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// UnreadCount is cache-aside. A count read before a concurrent Notify can be
// written back after its eviction; it is then stale for at most UnreadCountTTL.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if count, ok, err := s.unread.Get(ctx, userID); err != nil {
		s.logger.Warn("unread cache read failed", zap.Uint("user_id", userID), zap.Error(err))
	} else if ok {
		return count, nil
	}

	count, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, apperrors.Server(err, "failed to count unread notifications")
	}
	if err := s.unread.Set(ctx, userID, count); err != nil {
		s.logger.Warn("unread cache write failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return count, nil
}

// MarkRead marks the given ids owned by userID, or all of the user's unread
// notifications when ids is nil. A non-nil empty ids marks nothing. It returns
// the number of rows updated.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) (int64, error) {
	var (
		updated int64
		err     error
	)
	switch {
	case ids == nil:
		updated, err = s.repo.MarkAllAsRead(ctx, userID, s.now())
	case len(ids) == 0:
		return 0, nil
	default:
		updated, err = s.repo.MarkAsRead(ctx, userID, ids, s.now())
	}
	if err != nil {
		return 0, apperrors.Server(err, "failed to mark notifications as read")
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

func (s *NotificationService) invalidate(ctx context.Context, userID uint) {
	if err := s.unread.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("unread cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}
