package service

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/socialcore/backend/internal/cache"
	"github.com/anonto42/socialcore/backend/internal/database"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/repositories"
	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db            *gorm.DB
	clock         *fakeClock
	notifications *NotificationService
	graph         *GraphService
	posts         *PostService
	messages      *MessageService
	groups        *GroupService
	stories       *StoryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, nil)
}

func newTestEnvWithCache(t *testing.T, unread *cache.UnreadCache) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "socialcore.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	log := zap.NewNop()

	users := repositories.NewPostgresUserRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	posts := repositories.NewPostgresPostRepository(db)
	likes := repositories.NewPostgresLikeRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)
	groups := repositories.NewPostgresGroupRepository(db)
	tx := repositories.NewGormTransactor(db)

	notifications := NewNotificationService(
		repositories.NewPostgresNotificationRepository(db), users, posts, groups, unread, log, clock.Now)
	agg := NewAggregator(likes, comments, users)

	return &testEnv{
		db:            db,
		clock:         clock,
		notifications: notifications,
		graph:         NewGraphService(tx, follows, users, posts, agg, notifications, log),
		posts:         NewPostService(tx, posts, likes, comments, agg, notifications, log, clock.Now),
		messages:      NewMessageService(repositories.NewPostgresMessageRepository(db), users, log, clock.Now),
		groups: NewGroupService(tx, groups,
			repositories.NewPostgresGroupMessageRepository(db),
			repositories.NewPostgresGroupReadCursorRepository(db),
			users, notifications, log, clock.Now),
		stories: NewStoryService(repositories.NewPostgresStoryRepository(db), follows, users, log, clock.Now),
	}
}

// seedUsers inserts n users with ids 1..n.
func (e *testEnv) seedUsers(t *testing.T, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, e.db.Create(&models.User{
			ID:    uint(i),
			Name:  fmt.Sprintf("user%d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		}).Error)
	}
}

func (e *testEnv) notificationsFor(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, e.db.Where("user_id = ?", userID).Order("id").Find(&rows).Error)
	return rows
}

// failNotifications drops the notifications table so every insert fails until
// the returned restore func recreates it.
func (e *testEnv) failNotifications(t *testing.T) (restore func()) {
	t.Helper()
	require.NoError(t, e.db.Migrator().DropTable(&models.Notification{}))
	return func() {
		require.NoError(t, e.db.AutoMigrate(&models.Notification{}))
	}
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
