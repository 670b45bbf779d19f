package service

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postStory(t *testing.T, env *testEnv, owner uint) *models.Story {
	t.Helper()
	st, err := env.stories.Create(context.Background(), owner, models.CreateStoryRequest{
		Media:     "stories/beach.jpg",
		MediaType: "image",
	})
	require.NoError(t, err)
	return st
}

func TestStoryExpiresAfterTTL(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()
	require.NoError(t, env.graph.Follow(ctx, 2, 1))

	st := postStory(t, env, 1)
	assert.Equal(t, st.CreatedAt.Add(24*time.Hour), st.ExpiresAt)

	env.clock.Advance(23 * time.Hour)
	list, err := env.stories.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, st.ID, list[0].ID)
	assert.Equal(t, "user1", list[0].Author.Name)

	env.clock.Advance(2 * time.Hour)
	list, err = env.stories.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, env.stories.RecordView(ctx, 2, st.ID), apperrors.ErrNotFound)
}

func TestStoryVisibleOnlyToOwnerAndFollowers(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 3)
	ctx := context.Background()
	require.NoError(t, env.graph.Follow(ctx, 2, 1))

	st := postStory(t, env, 1)

	own, err := env.stories.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	stranger, err := env.stories.List(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, stranger)

	_, err = env.stories.ToggleLike(ctx, 3, st.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStoryViewAndLikeFlags(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()
	require.NoError(t, env.graph.Follow(ctx, 2, 1))
	st := postStory(t, env, 1)

	require.NoError(t, env.stories.RecordView(ctx, 2, st.ID))
	require.NoError(t, env.stories.RecordView(ctx, 2, st.ID))

	liked, err := env.stories.ToggleLike(ctx, 2, st.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	list, err := env.stories.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].ViewedByMe)
	assert.True(t, list[0].LikedByMe)

	liked, err = env.stories.ToggleLike(ctx, 2, st.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	var views int64
	require.NoError(t, env.db.Model(&models.StoryView{}).Count(&views).Error)
	assert.Equal(t, int64(1), views)
}

func TestPurgeExpiredStories(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers(t, 2)
	ctx := context.Background()
	require.NoError(t, env.graph.Follow(ctx, 2, 1))

	old := postStory(t, env, 1)
	require.NoError(t, env.stories.RecordView(ctx, 2, old.ID))
	env.clock.Advance(20 * time.Hour)
	fresh := postStory(t, env, 1)
	env.clock.Advance(10 * time.Hour)

	n, err := env.stories.PurgeExpired(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var remaining []models.Story
	require.NoError(t, env.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh.ID, remaining[0].ID)

	var views int64
	require.NoError(t, env.db.Model(&models.StoryView{}).Count(&views).Error)
	assert.Zero(t, views)
}
