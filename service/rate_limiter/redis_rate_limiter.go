/*
 * @module service/rate_limiter/redis_rate_limiter
 * @description 基于Redis的固定窗口限流服务，按客户端标识限制评分接口的请求频率
 * @architecture 工具层 - 提供分布式限流能力
 * @stateFlow 构造窗口Key -> Lua脚本原子计数 -> 判断是否超限
 * @rules 使用Redis INCR和EXPIRE实现固定窗口计数，多实例共享配额
 * @dependencies github.com/go-redis/redis/v8
 * @refs api/middleware/rate_limit.go, service/init.go
 */

package rate_limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cast"
)

const keyPrefix = "datacensus:rate_limit"

// RateLimitResult 限流检查结果
type RateLimitResult struct {
	Allowed   bool  `json:"allowed"`   // 是否允许请求
	Limit     int   `json:"limit"`     // 限制数量
	Remaining int   `json:"remaining"` // 剩余数量
	ResetAt   int64 `json:"reset_at"`  // 重置时间（Unix时间戳）
}

// rateLimitScript 返回 {是否允许, 当前计数, 上限, 剩余秒数}
var rateLimitScript = redis.NewScript(`
	local key = KEYS[1]
	local max_requests = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = redis.call('GET', key)
	if current == false then
		current = 0
	else
		current = tonumber(current)
	end

	if current >= max_requests then
		local ttl = redis.call('TTL', key)
		if ttl == -1 then
			ttl = window
		end
		return {0, current, max_requests, ttl}
	end

	local new_count = redis.call('INCR', key)
	if new_count == 1 then
		redis.call('EXPIRE', key, window)
	end

	local ttl = redis.call('TTL', key)
	if ttl == -1 then
		ttl = window
	end

	return {1, new_count, max_requests, ttl}
`)

// RedisRateLimiter Redis限流器
type RedisRateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRateLimiter 基于共享的 Redis 客户端创建限流器
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, now: time.Now}
}

// Allow 检查 key 在当前窗口内是否还有配额，有则计数加一
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	seconds := int(window / time.Second)
	if seconds <= 0 {
		seconds = 1
	}

	now := r.now()
	redisKey := buildKey(key, seconds, now)

	raw, err := rateLimitScript.Run(ctx, r.client, []string{redisKey}, limit, seconds).Result()
	if err != nil {
		return nil, fmt.Errorf("限流检查失败: %w", err)
	}
	return parseScriptResult(raw, now)
}

// buildKey 构造限流Key，窗口序号随时间递增
func buildKey(key string, windowSeconds int, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, key, now.Unix()/int64(windowSeconds))
}

func parseScriptResult(raw interface{}, now time.Time) (*RateLimitResult, error) {
	values, ok := raw.([]interface{})
	if !ok || len(values) != 4 {
		return nil, fmt.Errorf("限流脚本返回格式错误: %v", raw)
	}

	nums := make([]int64, len(values))
	for i, v := range values {
		n, err := cast.ToInt64E(v)
		if err != nil {
			return nil, fmt.Errorf("限流脚本返回格式错误: %w", err)
		}
		nums[i] = n
	}

	allowed, count, limit, ttl := nums[0] == 1, int(nums[1]), int(nums[2]), nums[3]
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimitResult{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(time.Duration(ttl) * time.Second).Unix(),
	}, nil
}
