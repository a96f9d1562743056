package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/aivory/fitstudio/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitorBucket 单个来源的令牌桶和最近活跃时间
type visitorBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 按来源 IP 的令牌桶限流，长期不活跃的桶定期回收
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitorBucket

	rps     rate.Limit
	burst   int
	maxIdle time.Duration
	done    chan struct{}
}

// NewIPRateLimiter 创建限流器并启动回收循环
func NewIPRateLimiter(rps float64, burst int, maxIdle time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		visitors: make(map[string]*visitorBucket),
		rps:      rate.Limit(rps),
		burst:    burst,
		maxIdle:  maxIdle,
		done:     make(chan struct{}),
	}
	go rl.pruneLoop()
	return rl
}

// Middleware 返回挂到路由组上的 gin 中间件
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			common.RespondError(c, http.StatusTooManyRequests, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

// StopCleanup 停止回收循环
func (rl *IPRateLimiter) StopCleanup() {
	close(rl.done)
}

func (rl *IPRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitorBucket{bucket: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()
	return v.bucket.Allow()
}

func (rl *IPRateLimiter) pruneLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.prune()
		case <-rl.done:
			return
		}
	}
}

// prune 清掉超过空闲期没有请求的来源
func (rl *IPRateLimiter) prune() {
	cutoff := time.Now().Add(-rl.maxIdle)
	rl.mu.Lock()
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
	rl.mu.Unlock()
}
