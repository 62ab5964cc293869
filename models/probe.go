package models

// ProbeOutcome classifies a single liveness probe.
//
// Status is nil when the probe never produced an HTTP response (timeout,
// DNS failure, connection refused); in that case Error is always set.
// Retryable marks outcomes expected to be transient: 5xx, 429 and
// transport-level failures including timeouts.
type ProbeOutcome struct {
	Status    *int   `json:"status"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable"`
}

// Alive reports whether the probe confirmed the target reachable.
// 2xx and 3xx responses count as alive.
func (o ProbeOutcome) Alive() bool {
	return o.Status != nil && *o.Status < 400
}

// StatusCode returns the HTTP status, or 0 for transport-level failures.
func (o ProbeOutcome) StatusCode() int {
	if o.Status == nil {
		return 0
	}
	return *o.Status
}
