package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	AdminStatsKeyPrefix = "admin:stats"
)

const (
	UserTTL       = 5 * time.Minute
	AdminStatsTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func AdminStatsKey() string {
	return AdminStatsKeyPrefix
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateAdminStats(ctx context.Context) {
	Invalidate(ctx, AdminStatsKey())
}
