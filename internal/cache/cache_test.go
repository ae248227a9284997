package cache

import (
	"testing"
	"time"
)

func TestChunkCacheSingleUse(t *testing.T) {
	cc := NewChunkCache(time.Minute)

	if !cc.Add("a", []byte{1, 2, 3}) {
		t.Fatal("first add should succeed")
	}
	if cc.Add("a", []byte{4}) {
		t.Fatal("duplicate add should fail")
	}
	if !cc.Has("a") {
		t.Fatal("expected chunk to be present")
	}

	b, ok := cc.Consume("a")
	if !ok || len(b) != 3 {
		t.Fatalf("expected 3-byte chunk, got %v (ok=%v)", b, ok)
	}
	if _, ok := cc.Consume("a"); ok {
		t.Fatal("chunk should be single-use")
	}
	if cc.Has("a") {
		t.Fatal("consumed chunk should be gone")
	}
}

func TestChunkCacheExpiry(t *testing.T) {
	cc := NewChunkCache(20 * time.Millisecond)
	cc.Add("a", []byte{1})
	time.Sleep(50 * time.Millisecond)
	if cc.Has("a") {
		t.Fatal("chunk should have expired")
	}
}

func TestRateLimiterThreshold(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("user") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("user") {
		t.Fatal("request over threshold should be denied")
	}
	if !rl.Allow("other") {
		t.Fatal("separate keys should not share counters")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(20*time.Millisecond, 1)
	if !rl.Allow("user") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("user") {
		t.Fatal("second request should be denied")
	}
	time.Sleep(50 * time.Millisecond)
	if !rl.Allow("user") {
		t.Fatal("request after window reset should be allowed")
	}
}
