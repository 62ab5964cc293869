package probe

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dtnitsch/dead-link-audit/models"
)

func intPtr(v int) *int { return &v }

func TestCacheGetSet(t *testing.T) {
	cache := NewCache()

	if _, ok := cache.Get("https://example.com"); ok {
		t.Fatal("Get() on empty cache reported a hit")
	}

	outcome := models.ProbeOutcome{Status: intPtr(200)}
	cache.Set("https://example.com", outcome)

	got, ok := cache.Get("https://example.com")
	if !ok {
		t.Fatal("Get() missed a fresh entry")
	}
	if got.StatusCode() != 200 {
		t.Errorf("Get() status = %d, want 200", got.StatusCode())
	}
}

func TestCacheDifferentialTTL(t *testing.T) {
	now := time.Now()
	cache := NewCache()
	cache.now = func() time.Time { return now }

	cache.Set("https://definitive.example.com", models.ProbeOutcome{Status: intPtr(404), Error: "HTTP 404 Not Found"})
	cache.Set("https://transient.example.com", models.ProbeOutcome{Error: "Request timeout", Retryable: true})

	tests := []struct {
		name           string
		advance        time.Duration
		wantDefinitive bool
		wantRetryable  bool
	}{
		{name: "both fresh", advance: time.Hour, wantDefinitive: true, wantRetryable: true},
		{name: "just under retryable TTL", advance: RetryableTTL - time.Minute, wantDefinitive: true, wantRetryable: true},
		{name: "retryable expired first", advance: RetryableTTL + time.Minute, wantDefinitive: true, wantRetryable: false},
		{name: "both expired", advance: DefinitiveTTL + time.Minute, wantDefinitive: false, wantRetryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache.now = func() time.Time { return now.Add(tt.advance) }

			_, defHit := cache.Get("https://definitive.example.com")
			if defHit != tt.wantDefinitive {
				t.Errorf("definitive hit = %v, want %v", defHit, tt.wantDefinitive)
			}
			_, retHit := cache.Get("https://transient.example.com")
			if retHit != tt.wantRetryable {
				t.Errorf("retryable hit = %v, want %v", retHit, tt.wantRetryable)
			}

			// Expired entries are dropped, so reinstate for later cases.
			cache.now = func() time.Time { return now }
			cache.Set("https://definitive.example.com", models.ProbeOutcome{Status: intPtr(404), Error: "HTTP 404 Not Found"})
			cache.Set("https://transient.example.com", models.ProbeOutcome{Error: "Request timeout", Retryable: true})
		})
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			url := fmt.Sprintf("https://example.com/%d", n%8)
			cache.Set(url, models.ProbeOutcome{Status: intPtr(200)})
			cache.Get(url)
		}(i)
	}
	wg.Wait()

	if cache.Len() != 8 {
		t.Errorf("Len() = %d, want 8", cache.Len())
	}
}
