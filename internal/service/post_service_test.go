package service

import (
	"context"
	"testing"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeUnlikeLikeCountsCurrentRows(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 3)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, 1, models.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, env.posts.Like(ctx, 2, post.ID))
	require.NoError(t, env.posts.Like(ctx, 2, post.ID))
	require.NoError(t, env.posts.Unlike(ctx, 2, post.ID))
	require.NoError(t, env.posts.Like(ctx, 2, post.ID))
	require.NoError(t, env.posts.Like(ctx, 3, post.ID))

	got, err := env.posts.GetPost(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LikeCount)
	assert.True(t, got.LikedByMe)

	// Each newly created like notifies, including the re-like.
	var likes []models.Notification
	for _, n := range env.notificationsFor(t, 1) {
		if n.Type == models.NotificationLike {
			likes = append(likes, n)
		}
	}
	require.Len(t, likes, 3)
	require.NotNil(t, likes[0].PostID)
	assert.Equal(t, post.ID, *likes[0].PostID)
}

func TestLikeOwnPostDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 1)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, 1, models.CreatePostRequest{Content: "self"})
	require.NoError(t, err)
	require.NoError(t, env.posts.Like(ctx, 1, post.ID))
	_, err = env.posts.Comment(ctx, 1, post.ID, "me again")
	require.NoError(t, err)

	assert.Empty(t, env.notificationsFor(t, 1))
}

func TestLikeMissingPost(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 1)

	err := env.posts.Like(context.Background(), 1, "does-not-exist")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCommentNotifiesAuthorAndCounts(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, 1, models.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)

	_, err = env.posts.Comment(ctx, 2, post.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	comment, err := env.posts.Comment(ctx, 2, post.ID, "nice")
	require.NoError(t, err)

	rows := env.notificationsFor(t, 1)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationComment, rows[0].Type)
	require.NotNil(t, rows[0].CommentID)
	assert.Equal(t, comment.ID, *rows[0].CommentID)

	got, err := env.posts.GetPost(ctx, 1, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CommentCount)
	assert.False(t, got.LikedByMe)

	err = env.posts.DeleteComment(ctx, 1, comment.ID)
	assert.ErrorIs(t, err, apperrors.ErrAuthorization)
	require.NoError(t, env.posts.DeleteComment(ctx, 2, comment.ID))

	comments, err := env.posts.Comments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestDeletePostOnlyByAuthor(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, 1, models.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)
	require.NoError(t, env.posts.Like(ctx, 2, post.ID))

	assert.ErrorIs(t, env.posts.DeletePost(ctx, 2, post.ID), apperrors.ErrAuthorization)
	require.NoError(t, env.posts.DeletePost(ctx, 1, post.ID))

	_, err = env.posts.GetPost(ctx, 1, post.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var likes int64
	require.NoError(t, env.db.Model(&models.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestPostStatsTrackCurrentRows(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 3)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, 1, models.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)

	require.NoError(t, env.posts.Like(ctx, 2, post.ID))
	require.NoError(t, env.posts.Unlike(ctx, 2, post.ID))
	require.NoError(t, env.posts.Like(ctx, 2, post.ID))
	require.NoError(t, env.posts.Like(ctx, 3, post.ID))
	require.NoError(t, env.posts.Unlike(ctx, 3, post.ID))
	_, err = env.posts.Comment(ctx, 3, post.ID, "first")
	require.NoError(t, err)

	stats, err := env.posts.Stats(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStats{LikeCount: 1, CommentCount: 1, LikedByMe: true}, *stats)

	stats, err = env.posts.Stats(ctx, 3, post.ID)
	require.NoError(t, err)
	assert.False(t, stats.LikedByMe)
	assert.Equal(t, env.count(t, &models.Like{}, "post_id = ?", post.ID), stats.LikeCount)

	_, err = env.posts.Stats(ctx, 2, "does-not-exist")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLikeAndCommentRollBackWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, 1, models.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)

	restore := env.failNotifications(t)
	assert.ErrorIs(t, env.posts.Like(ctx, 2, post.ID), apperrors.ErrServer)
	_, err = env.posts.Comment(ctx, 2, post.ID, "nice")
	assert.ErrorIs(t, err, apperrors.ErrServer)
	assert.Zero(t, env.count(t, &models.Like{}, "post_id = ?", post.ID))
	assert.Zero(t, env.count(t, &models.Comment{}, "post_id = ?", post.ID))

	restore()
	require.NoError(t, env.posts.Like(ctx, 2, post.ID))
	assert.Len(t, env.notificationsFor(t, 1), 1)
}
