package service

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFollowSelfIsRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 1)

	err := env.graph.Follow(context.Background(), 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	var count int64
	require.NoError(t, env.db.Model(&models.Follow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFollowUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 1)

	err := env.graph.Follow(context.Background(), 1, 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConcurrentFollowCreatesOneEdgeAndOneNotification(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error { return env.graph.Follow(ctx, 1, 2) })
	}
	require.NoError(t, g.Wait())

	var edges int64
	require.NoError(t, env.db.Model(&models.Follow{}).Where("follower_id = 1 AND following_id = 2").Count(&edges).Error)
	assert.Equal(t, int64(1), edges)

	rows := env.notificationsFor(t, 2)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationFollow, rows[0].Type)
	assert.Equal(t, uint(1), rows[0].ActorID)

	unread, err := env.notifications.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestFollowRollsBackWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()

	restore := env.failNotifications(t)
	err := env.graph.Follow(ctx, 1, 2)
	assert.ErrorIs(t, err, apperrors.ErrServer)
	assert.Zero(t, env.count(t, &models.Follow{}, "follower_id = ? AND following_id = ?", 1, 2))

	restore()
	require.NoError(t, env.graph.Follow(ctx, 1, 2))
	assert.Equal(t, int64(1), env.count(t, &models.Follow{}, "follower_id = ? AND following_id = ?", 1, 2))
	assert.Len(t, env.notificationsFor(t, 2), 1)
}

func TestUnfollowNeverNotifies(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()

	require.NoError(t, env.graph.Follow(ctx, 1, 2))
	require.NoError(t, env.graph.Unfollow(ctx, 1, 2))
	require.NoError(t, env.graph.Unfollow(ctx, 1, 2))

	following, err := env.graph.Following(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, following)
	assert.Len(t, env.notificationsFor(t, 2), 1)
	assert.Empty(t, env.notificationsFor(t, 1))
}

func TestFollowersAndStats(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 3)
	ctx := context.Background()

	require.NoError(t, env.graph.Follow(ctx, 1, 3))
	require.NoError(t, env.graph.Follow(ctx, 2, 3))
	require.NoError(t, env.graph.Follow(ctx, 3, 1))

	followers, err := env.graph.Followers(ctx, 3)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "user1", followers[0].Name)

	stats, err := env.graph.Stats(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, FollowStats{Followers: 2, Following: 1}, stats)
}

func TestFollowingFeedOrderingAndScope(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 3)
	ctx := context.Background()

	require.NoError(t, env.graph.Follow(ctx, 1, 2))

	own, err := env.posts.CreatePost(ctx, 1, models.CreatePostRequest{Content: "mine"})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	followed, err := env.posts.CreatePost(ctx, 2, models.CreatePostRequest{Content: "followed", Kind: models.PostKindReel})
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.posts.CreatePost(ctx, 3, models.CreatePostRequest{Content: "stranger"})
	require.NoError(t, err)

	feed, err := env.graph.FollowingFeed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, followed.ID, feed[0].ID)
	assert.Equal(t, own.ID, feed[1].ID)
	assert.Equal(t, "user2", feed[0].Author.Name)

	explore, err := env.graph.ExploreFeed(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, explore, 3)
	assert.Equal(t, "stranger", explore[0].Content)
}
