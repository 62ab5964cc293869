// Package probe verifies liveness of a single URL against the public
// internet and classifies the outcome.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dtnitsch/dead-link-audit/models"
)

// DefaultTimeout bounds a single probe including redirects.
const DefaultTimeout = 10 * time.Second

// Browser-identifying headers. Plenty of sites reject obvious bots with a
// blanket 403 before looking at the request at all.
var requestHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// Prober issues network probes. It holds no mutable state and is safe for
// concurrent use; callers own caching of outcomes.
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

// NewProber returns a Prober with the given per-probe timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Probe checks one URL. It sends a HEAD request first (cheap, no body);
// if the server answers 403 it retries once with GET, since some servers
// reject HEAD but serve GET. The returned outcome is classification data,
// never an error: transport failures map to a nil status with Error set.
func (p *Prober) Probe(ctx context.Context, rawURL string) models.ProbeOutcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status, err := p.request(ctx, http.MethodHead, rawURL)
	if err != nil {
		return classifyTransportError(err)
	}

	if status == http.StatusForbidden {
		getStatus, getErr := p.request(ctx, http.MethodGet, rawURL)
		if getErr == nil {
			status = getStatus
		}
	}

	return classifyStatus(status)
}

func (p *Prober) request(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	for key, value := range requestHeaders {
		req.Header.Set(key, value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// classifyStatus maps an HTTP response code to an outcome. 2xx/3xx are
// alive; 5xx and 429 are retryable failures; remaining 4xx are definitive.
func classifyStatus(status int) models.ProbeOutcome {
	outcome := models.ProbeOutcome{Status: &status}
	if status < 400 {
		return outcome
	}

	outcome.Error = fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	outcome.Retryable = status >= 500 || status == http.StatusTooManyRequests
	return outcome
}

// classifyTransportError maps a failure with no HTTP response. Timeouts
// get their own error string so the orchestrator can tally them; all
// transport-level failures are treated as retryable, since remote
// blocking is often per-client and transient.
func classifyTransportError(err error) models.ProbeOutcome {
	if isTimeout(err) {
		return models.ProbeOutcome{Error: "Request timeout", Retryable: true}
	}
	return models.ProbeOutcome{Error: err.Error(), Retryable: true}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
