package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbeClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantAlive     bool
		wantRetryable bool
	}{
		{name: "200 OK", status: 200, wantAlive: true},
		{name: "204 no content", status: 204, wantAlive: true},
		{name: "404 not found", status: 404, wantAlive: false, wantRetryable: false},
		{name: "410 gone", status: 410, wantAlive: false, wantRetryable: false},
		{name: "429 rate limited", status: 429, wantAlive: false, wantRetryable: true},
		{name: "500 server error", status: 500, wantAlive: false, wantRetryable: true},
		{name: "503 unavailable", status: 503, wantAlive: false, wantRetryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			outcome := NewProber(5 * time.Second).Probe(context.Background(), server.URL)

			if outcome.Alive() != tt.wantAlive {
				t.Errorf("Alive() = %v, want %v", outcome.Alive(), tt.wantAlive)
			}
			if outcome.StatusCode() != tt.status {
				t.Errorf("StatusCode() = %d, want %d", outcome.StatusCode(), tt.status)
			}
			if outcome.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", outcome.Retryable, tt.wantRetryable)
			}
			if !tt.wantAlive && outcome.Error == "" {
				t.Error("failing outcome has empty Error")
			}
		})
	}
}

func TestProbeSendsBrowserHeadersAndHead(t *testing.T) {
	var method, userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		userAgent = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	NewProber(5 * time.Second).Probe(context.Background(), server.URL)

	if method != http.MethodHead {
		t.Errorf("first request method = %s, want HEAD", method)
	}
	if userAgent == "" || userAgent == "Go-http-client/1.1" {
		t.Errorf("User-Agent = %q, want a browser-identifying value", userAgent)
	}
}

func TestProbeRetries403WithGet(t *testing.T) {
	var gotGet bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		gotGet = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	outcome := NewProber(5 * time.Second).Probe(context.Background(), server.URL)

	if !gotGet {
		t.Fatal("prober never fell back to GET after HEAD 403")
	}
	if !outcome.Alive() {
		t.Errorf("outcome = %+v, want alive after GET fallback", outcome)
	}
}

func TestProbe403StaysForbiddenWhenGetAlsoBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	outcome := NewProber(5 * time.Second).Probe(context.Background(), server.URL)

	if outcome.StatusCode() != http.StatusForbidden {
		t.Errorf("StatusCode() = %d, want 403", outcome.StatusCode())
	}
	if outcome.Retryable {
		t.Error("definitive 403 must not be retryable")
	}
}

func TestProbeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	outcome := NewProber(50 * time.Millisecond).Probe(context.Background(), server.URL)

	if outcome.Status != nil {
		t.Errorf("Status = %v, want nil for a timed-out probe", *outcome.Status)
	}
	if outcome.Error != "Request timeout" {
		t.Errorf("Error = %q, want %q", outcome.Error, "Request timeout")
	}
	if !outcome.Retryable {
		t.Error("timeout must be retryable")
	}
}

func TestProbeTransportErrorIsRetryableWithError(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	outcome := NewProber(time.Second).Probe(context.Background(), url)

	if outcome.Status != nil {
		t.Errorf("Status = %v, want nil for a transport failure", *outcome.Status)
	}
	if outcome.Error == "" {
		t.Error("nil status must pair with a non-empty Error")
	}
	if !outcome.Retryable {
		t.Error("transport failures classify as retryable")
	}
}
