package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/pkg/logger"
	"github.com/chhengkhim/Junior-project-sub002/pkg/metrics"
	"github.com/chhengkhim/Junior-project-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter 限流器接口
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Backend() string
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 进程内按 IP 的令牌桶
type IPRateLimiter struct {
	mu      sync.Mutex
	ips     map[string]*ipEntry
	r       rate.Limit
	b       int
	idleTTL time.Duration
	now     func() time.Time
}

// NewIPRateLimiter 创建一个新的IP限流器
// r: 每秒允许的请求数 (QPS)
// b: 桶的大小 (Burst)
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:     make(map[string]*ipEntry),
		r:       r,
		b:       b,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow 消耗 key 对应桶中的一个令牌
func (i *IPRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	entry, exists := i.ips[key]
	if !exists {
		entry = &ipEntry{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1), nil
}

// Backend 限流实现名称
func (i *IPRateLimiter) Backend() string { return "memory" }

// Sweep 清理长时间未出现的 IP，返回清理数量
func (i *IPRateLimiter) Sweep() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := i.now().Add(-i.idleTTL)
	removed := 0
	for ip, e := range i.ips {
		if e.lastSeen.Before(cutoff) {
			delete(i.ips, ip)
			removed++
		}
	}
	return removed
}

// RunSweeper 周期清理，直到 ctx 结束
func (i *IPRateLimiter) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.Sweep()
		}
	}
}

// RedisRateLimiter 多副本共享的固定窗口计数
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisRateLimiter 每个窗口内最多 limit 次请求
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: "uniconfess:ratelimit",
	}
}

// Allow 计数加一并在首次计数时设置过期
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(r.window)
	redisKey := fmt.Sprintf("%s:%s:%d", r.prefix, key, bucket)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= r.limit, nil
}

// Backend 限流实现名称
func (r *RedisRateLimiter) Backend() string { return "redis" }

// RateLimitMiddleware 限流中间件，限流器异常时放行
func RateLimitMiddleware(l Limiter, mc *metrics.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Log.Warn("rate limiter unavailable, allowing request",
				zap.String("backend", l.Backend()),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !ok {
			if mc != nil {
				mc.RecordRateLimited(l.Backend())
			}
			response.Abort(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}
