package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fixedLimiter returns a limiter whose clock only moves when *now is changed.
func fixedLimiter(config *Config, now *time.Time) *Limiter {
	l := NewLimiter(config)
	l.now = func() time.Time { return *now }
	return l
}

func TestTokenBucket_Take(t *testing.T) {
	now := time.Unix(0, 0)
	bucket := newTokenBucket(10, 1.0, now) // 10 tokens, 1 token per second

	// Should allow 10 requests immediately (burst)
	for i := 0; i < 10; i++ {
		if !bucket.take(now) {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// 11th request should be denied (no tokens left)
	if bucket.take(now) {
		t.Error("Expected 11th request to be denied")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Unix(0, 0)
	bucket := newTokenBucket(10, 1.0, now)

	for i := 0; i < 10; i++ {
		bucket.take(now)
	}

	now = now.Add(time.Second)
	if !bucket.take(now) {
		t.Error("Expected request to be allowed after refill")
	}
	if bucket.take(now) {
		t.Error("Expected request to be denied after consuming refilled token")
	}

	// Refill never exceeds capacity
	now = now.Add(time.Hour)
	bucket.refill(now)
	if bucket.tokens != 10 {
		t.Errorf("Expected a full bucket of 10 tokens, got %v", bucket.tokens)
	}
}

func TestTokenBucket_ResetTime(t *testing.T) {
	now := time.Unix(0, 0)
	bucket := newTokenBucket(10, 1.0, now)
	for i := 0; i < 5; i++ {
		bucket.take(now)
	}

	if got := bucket.resetTime(now); !got.Equal(now.Add(5 * time.Second)) {
		t.Errorf("Expected reset in 5s, got %v", got.Sub(now))
	}
	if got := bucket.retryAfter(); got != 0 {
		t.Errorf("Expected no retry delay while tokens remain, got %v", got)
	}
}

func TestLimiter_Allow(t *testing.T) {
	now := time.Unix(0, 0)
	limiter := fixedLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute}, &now)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("user-1", "/state", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
		if info.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, info.Remaining)
		}
	}

	allowed, info := limiter.Allow("user-1", "/state", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if info.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", info.Remaining)
	}
	// 10 per minute refills one token every 6s
	if info.RetryAfter < 5*time.Second || info.RetryAfter > 7*time.Second {
		t.Errorf("Expected retry after about 6s, got %v", info.RetryAfter)
	}

	// Other clients have their own buckets
	if allowed, _ := limiter.Allow("user-2", "/state", "GET"); !allowed {
		t.Error("Expected a different client to be allowed")
	}
}

func TestLimiter_Exempt(t *testing.T) {
	now := time.Unix(0, 0)
	limiter := fixedLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, Exempt: []string{"ops"}}, &now)
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("ops", "/state", "GET"); !allowed {
			t.Errorf("Expected exempt request %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("user-1", "/state", "GET"); !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	now := time.Unix(0, 0)
	limiter := fixedLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}, &now)
	defer limiter.Stop()

	// Generation has a burst of 3
	for i := 0; i < 3; i++ {
		if allowed, _ := limiter.Allow("user-1", "/interview/generate", "POST"); !allowed {
			t.Errorf("Expected generate request %d to be allowed", i+1)
		}
	}
	allowed, info := limiter.Allow("user-1", "/interview/generate", "POST")
	if allowed {
		t.Error("Expected 4th generate request to be denied")
	}
	if info.Limit != 20 {
		t.Errorf("Expected limit 20, got %d", info.Limit)
	}

	// Reads fall back to the default
	if allowed, info := limiter.Allow("user-1", "/state", "GET"); !allowed || info.Limit != 100 {
		t.Errorf("Expected default limit of 100 for reads, got allowed=%v limit=%d", allowed, info.Limit)
	}

	// The event stream and health check are unlimited
	for i := 0; i < 200; i++ {
		if allowed, _ := limiter.Allow("user-1", "/events", "GET"); !allowed {
			t.Fatalf("Expected event stream request %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	now := time.Unix(0, 0)
	limiter := fixedLimiter(&Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Minute}, &now)
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("user-1", "/state", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 50 {
		t.Errorf("Expected exactly 50 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_Sweep(t *testing.T) {
	now := time.Unix(0, 0)
	limiter := fixedLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute}, &now)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow(fmt.Sprintf("user-%d", i), "/state", "GET")
	}
	now = now.Add(2 * time.Hour)
	limiter.Allow("user-0", "/state", "GET")

	if removed := limiter.Sweep(now.Add(-time.Hour)); removed != 2 {
		t.Errorf("Expected 2 idle buckets removed, got %d", removed)
	}
	if len(limiter.buckets) != 1 {
		t.Errorf("Expected 1 bucket left, got %d", len(limiter.buckets))
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/resume", Method: "POST", Limit: 1},
		{Path: "/candidates/", Method: "GET", Limit: 2},
	}

	if got := MatchEndpoint("/resume", "POST", configs); got == nil || got.Limit != 1 {
		t.Errorf("Expected exact match for POST /resume, got %+v", got)
	}
	if got := MatchEndpoint("/candidates/jane@example.com", "GET", configs); got == nil || got.Limit != 2 {
		t.Errorf("Expected prefix match for candidate lookup, got %+v", got)
	}
	if got := MatchEndpoint("/resume", "GET", configs); got != nil {
		t.Errorf("Expected no match for GET /resume, got %+v", got)
	}
	if got := MatchEndpoint("/health", "GET", configs); got == nil || got.Limit != 0 {
		t.Errorf("Expected unlimited health check, got %+v", got)
	}
}

func TestMatchEndpoint_LongestPrefixAndAnyMethod(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/interview/", Limit: 1},
		{Path: "/interview/answer/", Method: "POST", Limit: 2},
	}

	if got := MatchEndpoint("/interview/answer/3", "POST", configs); got == nil || got.Limit != 2 {
		t.Errorf("Expected the longer prefix to win, got %+v", got)
	}
	if got := MatchEndpoint("/interview/answer/3", "GET", configs); got == nil || got.Limit != 1 {
		t.Errorf("Expected the method-agnostic prefix for GET, got %+v", got)
	}
	if got := MatchEndpoint("/profile/field", "POST", configs); got != nil {
		t.Errorf("Expected no match outside the prefixes, got %+v", got)
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()
	limiter.Stop()

	if allowed, info := limiter.Allow("user-1", "/state", "GET"); !allowed || info.Limit != 600 {
		t.Errorf("Expected default limit of 600, got allowed=%v limit=%d", allowed, info.Limit)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_EXEMPT", "ops,ci")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultLimit != 42 {
		t.Errorf("Expected default limit 42, got %d", cfg.DefaultLimit)
	}
	if len(cfg.Exempt) != 2 || cfg.Exempt[1] != "ci" {
		t.Errorf("Expected two exempt clients, got %v", cfg.Exempt)
	}
	if len(cfg.EndpointConfigs) == 0 {
		t.Error("Expected default endpoint configs")
	}

	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "-1")
	if _, err := LoadConfig(); err == nil {
		t.Error("Expected an error for a negative default limit")
	}
}
