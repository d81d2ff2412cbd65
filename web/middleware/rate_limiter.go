package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// RateLimiterConfig holds configuration for per-client rate limiting.
type RateLimiterConfig struct {
	RequestsPerMinute int // sustained request rate per client
	BurstSize         int // allow burst of N requests
	MaxClients        int // bound on tracked client buckets
}

// TokenBucket implements a token bucket rate limiter.
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket.
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can proceed and consumes a token if so.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tb.tokens = min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate))
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// ClientRateLimiter manages token buckets per client IP. The bucket map is an
// LRU so an open endpoint cannot grow it without bound; evicting a stale
// client merely hands it a fresh bucket on its next request.
type ClientRateLimiter struct {
	config  RateLimiterConfig
	buckets *lru.Cache
	logger  *zap.Logger
}

// NewClientRateLimiter creates a new per-client rate limiter.
func NewClientRateLimiter(config RateLimiterConfig, logger *zap.Logger) (*ClientRateLimiter, error) {
	size := config.MaxClients
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ClientRateLimiter{
		config:  config,
		buckets: cache,
		logger:  logger,
	}, nil
}

// Allow checks whether the given client may proceed.
func (rl *ClientRateLimiter) Allow(clientIP string) bool {
	if bucket, ok := rl.buckets.Get(clientIP); ok {
		return bucket.(*TokenBucket).Allow()
	}

	refillRate := float64(rl.config.RequestsPerMinute) / 60.0
	bucket := NewTokenBucket(float64(rl.config.BurstSize), refillRate)
	rl.buckets.Add(clientIP, bucket)
	return bucket.Allow()
}

// RateLimitMiddleware creates a Gin middleware enforcing the per-client limit.
func RateLimitMiddleware(limiter *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiter.Allow(clientIP) {
			if limiter.logger != nil {
				limiter.logger.Warn("Rate limit exceeded", zap.String("client_ip", clientIP))
			}
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
