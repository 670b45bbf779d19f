package service

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/metrics"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCommentsPerPost = 500

// PostService owns posts, reels, likes and comments.
type PostService struct {
	tx       repositories.Transactor
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	agg      *Aggregator
	notifier *NotificationService
	logger   *zap.Logger
	now      Clock
}

func NewPostService(
	tx repositories.Transactor,
	posts repositories.PostRepository,
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	agg *Aggregator,
	notifier *NotificationService,
	logger *zap.Logger,
	clock Clock,
) *PostService {
	return &PostService{
		tx:       tx,
		posts:    posts,
		likes:    likes,
		comments: comments,
		agg:      agg,
		notifier: notifier,
		logger:   logger,
		now:      clockOrDefault(clock),
	}
}

func (s *PostService) CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.Invalid("content is required")
	}
	kind := req.Kind
	if kind == "" {
		kind = models.PostKindPost
	}
	if kind != models.PostKindPost && kind != models.PostKindReel {
		return nil, apperrors.Invalid("kind must be post or reel")
	}
	post := &models.Post{
		UserID:    authorID,
		Kind:      kind,
		Content:   content,
		MediaURL:  req.MediaURL,
		CreatedAt: s.now(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Server(err, "failed to create post")
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, viewerID uint, postID string) (*models.FeedPost, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	feed, err := s.agg.Decorate(ctx, viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &feed[0], nil
}

// Stats returns the post's counters and whether viewerID likes it.
func (s *PostService) Stats(ctx context.Context, viewerID uint, postID string) (*models.PostStats, error) {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.agg.Stats(ctx, postID, viewerID)
}

// DeletePost removes a post together with its likes and comments. Only the
// author may delete.
func (s *PostService) DeletePost(ctx context.Context, actorID uint, postID string) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return apperrors.Forbidden("only the author can delete this post")
	}
	if err := s.likes.DeleteByPostID(ctx, postID); err != nil {
		return apperrors.Server(err, "failed to delete likes")
	}
	if err := s.comments.DeleteByPostID(ctx, postID); err != nil {
		return apperrors.Server(err, "failed to delete comments")
	}
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return postLookup(err)
	}
	return nil
}

// Like is idempotent. Only a newly created like notifies the author, so
// like, unlike, like again produces a second notification.
func (s *PostService) Like(ctx context.Context, actorID uint, postID string) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	var (
		created bool
		note    *models.Notification
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: actorID, CreatedAt: s.now()})
		if err != nil || !created {
			return err
		}
		note, err = s.notifier.Record(ctx, post.UserID, actorID, LikeEvent{PostID: postID})
		return err
	})
	if err != nil {
		return apperrors.Server(err, "failed to like post")
	}
	if !created {
		metrics.IdempotentNoops.WithLabelValues("like").Inc()
		return nil
	}
	s.notifier.Published(ctx, note)
	return nil
}

func (s *PostService) Unlike(ctx context.Context, actorID uint, postID string) error {
	if _, err := s.likes.DeleteLike(ctx, postID, actorID); err != nil {
		return apperrors.Server(err, "failed to unlike post")
	}
	return nil
}

func (s *PostService) Comment(ctx context.Context, actorID uint, postID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Invalid("content is required")
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{
		PostID:    postID,
		UserID:    actorID,
		Content:   content,
		CreatedAt: s.now(),
	}
	var note *models.Notification
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		var err error
		note, err = s.notifier.Record(ctx, post.UserID, actorID, CommentEvent{PostID: postID, CommentID: comment.ID})
		return err
	})
	if err != nil {
		return nil, apperrors.Server(err, "failed to create comment")
	}
	s.notifier.Published(ctx, note)
	return comment, nil
}

func (s *PostService) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, postID, maxCommentsPerPost)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load comments")
	}
	return comments, nil
}

func (s *PostService) DeleteComment(ctx context.Context, actorID, commentID uint) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return apperrors.Lookup(err, "comment")
	}
	if comment.UserID != actorID {
		return apperrors.Forbidden("only the author can delete this comment")
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return apperrors.Server(err, "failed to delete comment")
	}
	return nil
}

func (s *PostService) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, apperrors.Invalid("post id is required")
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, postLookup(err)
	}
	return post, nil
}

func postLookup(err error) error {
	if errors.Is(err, repositories.ErrPostNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("post not found")
	}
	return apperrors.Server(err, "failed to load post")
}
