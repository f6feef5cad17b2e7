/*
 * @module api/middleware/rate_limit
 * @description 按客户端IP的请求限流中间件
 * @architecture 中间件模式 - HTTP请求拦截
 * @stateFlow 提取客户端IP -> 限流检查 -> 放行或返回 429
 * @rules 限流服务异常时放行请求，只记录日志
 * @dependencies datacensus-service/service/rate_limiter, github.com/go-chi/render
 * @refs api/routes.go, service/rate_limiter/redis_rate_limiter.go
 */

package middleware

import (
	"context"
	"datacensus-service/service/monitoring"
	"datacensus-service/service/rate_limiter"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
)

// Limiter 限流器
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*rate_limiter.RateLimitResult, error)
}

// RateLimit 每个客户端IP在 window 内最多 limit 次请求
func RateLimit(limiter Limiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			result, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				slog.Warn("限流检查失败，放行请求", "client", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

			if !result.Allowed {
				retryAfter := result.ResetAt - time.Now().Unix()
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				monitoring.RecordRequest(monitoring.StatusRateLimited)

				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, map[string]interface{}{
					"status": http.StatusTooManyRequests,
					"msg":    "请求过于频繁，请稍后再试",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP RemoteAddr 去掉端口，需配合 middleware.RealIP 使用
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
