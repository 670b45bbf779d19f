package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/anonto42/socialcore/backend/internal/cache"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifySkipsSelf(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 1)

	require.NoError(t, env.notifications.Notify(context.Background(), 1, 1, FollowEvent{}))
	assert.Empty(t, env.notificationsFor(t, 1))
}

func TestEventsPopulateOnlyTheirReferences(t *testing.T) {
	cases := []struct {
		event   Event
		post    bool
		comment bool
		group   bool
	}{
		{FollowEvent{}, false, false, false},
		{LikeEvent{PostID: "p1"}, true, false, false},
		{CommentEvent{PostID: "p1", CommentID: 7}, true, true, false},
		{GroupAddedEvent{GroupID: 3, GroupName: "g"}, false, false, true},
		{GroupAdminEvent{GroupID: 3, GroupName: "g"}, false, false, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.event.Type()), func(t *testing.T) {
			var n models.Notification
			tc.event.apply(&n)
			assert.Equal(t, tc.post, n.PostID != nil)
			assert.Equal(t, tc.comment, n.CommentID != nil)
			assert.Equal(t, tc.group, n.GroupID != nil)
			assert.Equal(t, tc.group, n.Message != "")
		})
	}
}

func TestListEnrichesAndOrders(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 3)
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, 1, models.CreatePostRequest{Content: "pic", MediaURL: "https://cdn.example.com/p.jpg"})
	require.NoError(t, err)
	require.NoError(t, env.posts.Like(ctx, 2, post.ID))
	env.clock.Advance(time.Second)
	g, err := env.groups.Create(ctx, 3, models.CreateGroupRequest{Name: "crew", Picture: "https://cdn.example.com/g.jpg"})
	require.NoError(t, err)
	_, err = env.groups.AddMember(ctx, 3, g.ID, 1)
	require.NoError(t, err)

	views, err := env.notifications.List(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, models.NotificationGroupAdded, views[0].Type)
	assert.Equal(t, "crew", views[0].GroupName)
	assert.Equal(t, "https://cdn.example.com/g.jpg", views[0].GroupThumbnail)
	assert.Equal(t, "user3", views[0].Actor.Name)

	assert.Equal(t, models.NotificationLike, views[1].Type)
	assert.Equal(t, "https://cdn.example.com/p.jpg", views[1].PostThumbnail)

	views, err = env.notifications.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestMarkReadOnlyOwnedIDs(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 3)
	ctx := context.Background()

	require.NoError(t, env.graph.Follow(ctx, 2, 1))
	require.NoError(t, env.graph.Follow(ctx, 3, 1))
	require.NoError(t, env.graph.Follow(ctx, 1, 2))

	mine := env.notificationsFor(t, 1)
	theirs := env.notificationsFor(t, 2)
	require.Len(t, mine, 2)
	require.Len(t, theirs, 1)

	updated, err := env.notifications.MarkRead(ctx, 1, []uint{mine[0].ID, theirs[0].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	unread, err := env.notifications.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	updated, err = env.notifications.MarkRead(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	unread, err = env.notifications.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, unread)

	updated, err = env.notifications.MarkRead(ctx, 2, []uint{})
	require.NoError(t, err)
	assert.Zero(t, updated, "an explicit empty id list marks nothing")
	unread, err = env.notifications.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestUnreadCountIsCachedAndEvicted(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	key := "notifications:unread:2"

	env := newTestEnvWithCache(t, cache.NewUnreadCache(cache.NewRedisCacheFromClient(client)))
	env.seedUsers(t, 2)
	ctx := context.Background()

	require.NoError(t, env.graph.Follow(ctx, 1, 2))
	unread, err := env.notifications.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	cached, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "1", cached)

	// A row written behind the service is hidden until the entry is evicted.
	require.NoError(t, env.db.Create(&models.Notification{
		UserID: 2, ActorID: 1, Type: models.NotificationFollow, CreatedAt: env.clock.Now(),
	}).Error)
	unread, err = env.notifications.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	post, err := env.posts.CreatePost(ctx, 2, models.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)
	require.NoError(t, env.posts.Like(ctx, 1, post.ID))
	assert.False(t, mr.Exists(key), "fan-out evicts the recipient's count")
	unread, err = env.notifications.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	require.NoError(t, env.notifications.Notify(ctx, 2, 1, FollowEvent{}))
	assert.False(t, mr.Exists(key))
	unread, err = env.notifications.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), unread)

	_, err = env.notifications.MarkRead(ctx, 2, nil)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key), "mark read evicts the count")
	unread, err = env.notifications.UnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNoNotificationTargetsItsActor(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()

	require.NoError(t, env.graph.Follow(ctx, 1, 2))
	post, err := env.posts.CreatePost(ctx, 1, models.CreatePostRequest{Content: "x"})
	require.NoError(t, err)
	require.NoError(t, env.posts.Like(ctx, 1, post.ID))
	require.NoError(t, env.posts.Like(ctx, 2, post.ID))
	g, err := env.groups.Create(ctx, 1, models.CreateGroupRequest{Name: "g"})
	require.NoError(t, err)
	require.NoError(t, env.groups.SetRole(ctx, 1, g.ID, 1, models.RoleAdmin))

	var bad int64
	require.NoError(t, env.db.Model(&models.Notification{}).Where("user_id = actor_id").Count(&bad).Error)
	assert.Zero(t, bad)
}
