package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseIfMatchScript 仅当锁值与 token 一致时删除，避免误删后续请求的锁
var releaseIfMatchScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

func placementLockKey(martID, userID string) string {
	return fmt.Sprintf("order:placing:%s:%s", martID, userID)
}

// AcquirePlacementLock 获取买家在活动内的下单占位锁
// Redis 未启用时视为获取成功。
func AcquirePlacementLock(ctx context.Context, martID, userID, token string, ttl time.Duration) (bool, error) {
	if !Enabled() {
		return true, nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return redisClient.SetNX(ctx, buildKey(placementLockKey(martID, userID)), token, ttl).Result()
}

// ReleasePlacementLock 释放下单占位锁（仅释放自己持有的锁）
func ReleasePlacementLock(ctx context.Context, martID, userID, token string) error {
	if !Enabled() {
		return nil
	}
	return releaseIfMatchScript.Run(ctx, redisClient, []string{buildKey(placementLockKey(martID, userID))}, token).Err()
}
