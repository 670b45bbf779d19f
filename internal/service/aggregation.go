package service

import (
	"context"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/repositories"
)

// Aggregator derives like and comment counters at read time.
type Aggregator struct {
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
}

func NewAggregator(likes repositories.LikeRepository, comments repositories.CommentRepository, users repositories.UserRepository) *Aggregator {
	return &Aggregator{likes: likes, comments: comments, users: users}
}

func (a *Aggregator) LikeCount(ctx context.Context, postID string) (int64, error) {
	n, err := a.likes.GetLikesCountByPostID(ctx, postID)
	return n, apperrors.Server(err, "failed to count likes")
}

func (a *Aggregator) CommentCount(ctx context.Context, postID string) (int64, error) {
	n, err := a.comments.GetCommentsCountByPostID(ctx, postID)
	return n, apperrors.Server(err, "failed to count comments")
}

func (a *Aggregator) LikedByMe(ctx context.Context, postID string, viewerID uint) (bool, error) {
	liked, err := a.likes.HasUserLikedPost(ctx, postID, viewerID)
	return liked, apperrors.Server(err, "failed to check like")
}

// Stats computes the aggregates of a single post for viewerID.
func (a *Aggregator) Stats(ctx context.Context, postID string, viewerID uint) (*models.PostStats, error) {
	likes, err := a.LikeCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := a.CommentCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	liked, err := a.LikedByMe(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	return &models.PostStats{LikeCount: likes, CommentCount: comments, LikedByMe: liked}, nil
}

// Decorate attaches author, counters and the viewer's like flag to posts,
// preserving their order. It issues one grouped query per aggregate.
func (a *Aggregator) Decorate(ctx context.Context, viewerID uint, posts []models.Post) ([]models.FeedPost, error) {
	feed := make([]models.FeedPost, 0, len(posts))
	if len(posts) == 0 {
		return feed, nil
	}

	postIDs := make([]string, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.UserID)
	}

	likeCounts, err := a.likes.CountByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to count likes")
	}
	commentCounts, err := a.comments.CountByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to count comments")
	}
	liked, err := a.likes.GetLikedPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load likes")
	}
	authors, err := a.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, apperrors.Server(err, "failed to load authors")
	}

	for _, p := range posts {
		item := models.FeedPost{
			Post: p,
			PostStats: models.PostStats{
				LikeCount:    likeCounts[p.ID],
				CommentCount: commentCounts[p.ID],
				LikedByMe:    liked[p.ID],
			},
			Author: models.UserCompact{ID: p.UserID},
		}
		if author, ok := authors[p.UserID]; ok {
			item.Author = author.ToCompact()
		}
		feed = append(feed, item)
	}
	return feed, nil
}
