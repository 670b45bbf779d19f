package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// UnreadCountTTL bounds how stale a cached count can get if an invalidation is lost.
const UnreadCountTTL = 30 * time.Second

// UnreadCache caches per-user notification unread counts. A nil *UnreadCache
// is valid and caches nothing.
type UnreadCache struct {
	redis *RedisCache
}

func NewUnreadCache(redis *RedisCache) *UnreadCache {
	if redis == nil {
		return nil
	}
	return &UnreadCache{redis: redis}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// Get reports ok=false on a miss.
func (uc *UnreadCache) Get(ctx context.Context, userID uint) (int64, bool, error) {
	if uc == nil {
		return 0, false, nil
	}
	raw, err := uc.redis.Get(ctx, unreadKey(userID))
	if err != nil || raw == nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (uc *UnreadCache) Set(ctx context.Context, userID uint, count int64) error {
	if uc == nil {
		return nil
	}
	return uc.redis.Set(ctx, unreadKey(userID), []byte(strconv.FormatInt(count, 10)), UnreadCountTTL)
}

func (uc *UnreadCache) Invalidate(ctx context.Context, userID uint) error {
	if uc == nil {
		return nil
	}
	return uc.redis.Delete(ctx, unreadKey(userID))
}
