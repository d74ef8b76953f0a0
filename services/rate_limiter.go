/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 基于Redis的分布式限流器
 */
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimiter Redis滑动窗口限流器
type RateLimiter struct {
	rdb       *redis.Client
	keyPrefix string
	limit     int           // 时间窗口内允许的最大请求数
	window    time.Duration // 时间窗口
}

// NewRateLimiter 创建新的限流器
func NewRateLimiter(rdb *redis.Client, keyPrefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:       rdb,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
	}
}

// Allow 检查是否允许请求通过
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.keyPrefix, key)

	now := time.Now().UnixNano()
	windowStart := now - int64(rl.window)

	pipe := rl.rdb.Pipeline()

	// 移除窗口之外的请求记录
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart))

	// 记录当前请求
	pipe.ZAdd(ctx, redisKey, &redis.Z{Score: float64(now), Member: now})

	// 统计窗口内的请求数
	countCmd := pipe.ZCard(ctx, redisKey)

	// key过期时间设为窗口的两倍，避免长期占用内存
	pipe.Expire(ctx, redisKey, rl.window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	count, err := countCmd.Result()
	if err != nil {
		return false, err
	}

	return count <= int64(rl.limit), nil
}

// GetCurrentCount 获取当前窗口内的请求计数
func (rl *RateLimiter) GetCurrentCount(ctx context.Context, key string) (int64, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.keyPrefix, key)

	now := time.Now().UnixNano()
	windowStart := now - int64(rl.window)

	pipe := rl.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return countCmd.Result()
}
