package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wealthline.backend/internal/interfaces/http/response"
	"wealthline.backend/pkg/logger"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// AuthLimit guards the code, login and reset endpoints.
var AuthLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	cfg         RateLimitConfig
	limit       rate.Limit
	limiters    sync.Map // map[string]*rate.Limiter
	mu          sync.Mutex
	lastCleanup time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerWindow <= 0 || cfg.Window <= 0 {
		cfg = AuthLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerWindow
	}
	return &RateLimiter{
		cfg:         cfg,
		limit:       rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		lastCleanup: time.Now(),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if l, ok := rl.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	actual, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.limit, rl.cfg.Burst))
	rl.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle limiters at most every five minutes. A limiter
// with a full bucket has not been used recently.
func (rl *RateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()
	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.cfg.Burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Middleware limits requests per client IP and answers 429 with Retry-After.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		l := rl.limiter(key)
		if l.Allow() {
			c.Next()
			return
		}

		reservation := l.Reserve()
		delay := reservation.Delay()
		reservation.Cancel()
		retryAfter := max(int(delay.Seconds()), 1)

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.cfg.RequestsPerWindow))
		logger.Warn(c.Request.Context(), "Rate limit exceeded",
			zap.String("key", key),
			zap.String("path", c.Request.URL.Path),
			zap.Int("retry_after", retryAfter),
		)
		response.ErrorWithError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
		c.Abort()
	}
}
