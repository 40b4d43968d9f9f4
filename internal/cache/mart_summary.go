package cache

import (
	"context"
	"fmt"
	"time"
)

func martSummaryKey(martID string) string {
	return fmt.Sprintf("stats:mart_summary:%s", martID)
}

// GetMartSummary 读取活动统计缓存
func GetMartSummary(ctx context.Context, martID string, dest interface{}) (bool, error) {
	if martID == "" {
		return false, nil
	}
	return GetJSON(ctx, martSummaryKey(martID), dest)
}

// SetMartSummary 写入活动统计缓存
func SetMartSummary(ctx context.Context, martID string, value interface{}, ttl time.Duration) error {
	if martID == "" || ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, martSummaryKey(martID), value, ttl)
}

// InvalidateMartSummary 订单写入后失效活动统计缓存
func InvalidateMartSummary(ctx context.Context, martID string) error {
	if martID == "" {
		return nil
	}
	return Del(ctx, martSummaryKey(martID))
}
