package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestTokenBucketBurstThenDeny(t *testing.T) {
	// Refill rate of zero isolates the burst behavior from timing.
	bucket := NewTokenBucket(3, 0)

	for i := 0; i < 3; i++ {
		if !bucket.Allow() {
			t.Fatalf("request %d denied within burst of 3", i+1)
		}
	}
	if bucket.Allow() {
		t.Error("request allowed after burst exhausted")
	}
}

func TestClientRateLimiterIsolatesClients(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	limiter, err := NewClientRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 0,
		BurstSize:         1,
		MaxClients:        16,
	}, logger)
	if err != nil {
		t.Fatal(err)
	}

	if !limiter.Allow("10.0.0.1") {
		t.Fatal("first request from client A denied")
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("client A allowed past its burst")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Error("client B throttled by client A's bucket")
	}
}

func TestRateLimitMiddlewareResponds429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := zap.NewDevelopment()
	limiter, err := NewClientRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 0,
		BurstSize:         1,
		MaxClients:        16,
	}, logger)
	if err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	router.Use(RateLimitMiddleware(limiter))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.168.1.9:54321"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w.Code)
	}
	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("throttled response missing Retry-After header")
	}
}
