package models

import "time"

// ExtractedLink is one outbound URL found in an article body, together
// with a short plain-text window around its occurrence for human review.
// Multiple occurrences of the same URL within one article collapse to a
// single entry, keeping the first-seen context.
type ExtractedLink struct {
	URL     string `json:"url"`
	Context string `json:"context"`
}

// DeadLink is the terminal record for one failing or indeterminate URL.
// It is immutable once created and carried in the final LinkCheckResult.
type DeadLink struct {
	URL         string    `json:"url"`
	Status      *int      `json:"status"` // nil when no HTTP response was obtained
	Error       string    `json:"error,omitempty"`
	Context     string    `json:"context,omitempty"`
	PostID      string    `json:"post_id"`
	PostTitle   string    `json:"post_title"`
	PostSlug    string    `json:"post_slug"`
	ArchiveURL  string    `json:"archive_url,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Retryable   bool      `json:"retryable"`
	CheckedAt   time.Time `json:"checked_at"`
}
