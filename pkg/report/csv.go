// Package report serializes a finished LinkCheckResult to portable
// formats. All exporters are pure: they write to the given writer and
// touch nothing else.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dtnitsch/dead-link-audit/models"
)

// Options selects optional columns/fields in exports.
type Options struct {
	IncludeContext     bool
	IncludeArchive     bool
	IncludeSuggestions bool
	GroupByPost        bool // JSON export only
}

// WriteCSV exports dead links as RFC-4180 CSV. An empty result renders an
// explicit affirmative row rather than a bare header.
func WriteCSV(w io.Writer, result *models.LinkCheckResult, opts Options) error {
	cw := csv.NewWriter(w)

	header := []string{"url", "status", "error", "post_title", "post_slug", "retryable", "checked_at"}
	if opts.IncludeContext {
		header = append(header, "context")
	}
	if opts.IncludeArchive {
		header = append(header, "archive_url")
	}
	if opts.IncludeSuggestions {
		header = append(header, "suggestions")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if len(result.DeadLinks) == 0 {
		row := make([]string, len(header))
		row[0] = "No dead links found"
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
		cw.Flush()
		return cw.Error()
	}

	for _, dl := range result.DeadLinks {
		row := []string{
			dl.URL,
			statusLabel(dl),
			dl.Error,
			dl.PostTitle,
			dl.PostSlug,
			fmt.Sprintf("%t", dl.Retryable),
			dl.CheckedAt.Format("2006-01-02 15:04:05"),
		}
		if opts.IncludeContext {
			row = append(row, dl.Context)
		}
		if opts.IncludeArchive {
			row = append(row, dl.ArchiveURL)
		}
		if opts.IncludeSuggestions {
			row = append(row, strings.Join(dl.Suggestions, "; "))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// statusLabel renders the HTTP status, or the transport failure class
// when no response was obtained.
func statusLabel(dl models.DeadLink) string {
	if dl.Status == nil {
		return "no response"
	}
	return fmt.Sprintf("%d", *dl.Status)
}
