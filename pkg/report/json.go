package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dtnitsch/dead-link-audit/models"
)

// summary is the run-level panel common to JSON and HTML exports.
type summary struct {
	TotalLinks      int     `json:"total_links"`
	CheckedLinks    int     `json:"checked_links"`
	WorkingLinks    int     `json:"working_links"`
	DeadLinks       int     `json:"dead_links"`
	SkippedLinks    int     `json:"skipped_links"`
	RetryableErrors int     `json:"retryable_errors"`
	ForbiddenErrors int     `json:"forbidden_errors"`
	TimeoutErrors   int     `json:"timeout_errors"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type jsonExport struct {
	Summary   summary           `json:"summary"`
	Message   string            `json:"message,omitempty"`
	DeadLinks []models.DeadLink `json:"dead_links,omitempty"`
	Posts     []postGroup       `json:"posts,omitempty"`
}

type postGroup struct {
	PostID    string            `json:"post_id"`
	PostTitle string            `json:"post_title"`
	PostSlug  string            `json:"post_slug"`
	DeadLinks []models.DeadLink `json:"dead_links"`
}

// WriteJSON exports the result as indented JSON, optionally grouped by
// source post. An empty result carries an explicit message instead of a
// bare empty list.
func WriteJSON(w io.Writer, result *models.LinkCheckResult, opts Options) error {
	export := jsonExport{Summary: buildSummary(result)}

	switch {
	case len(result.DeadLinks) == 0:
		export.Message = "No dead links found"
	case opts.GroupByPost:
		export.Posts = groupByPost(result.DeadLinks)
	default:
		export.DeadLinks = result.DeadLinks
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON export: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON export: %w", err)
	}
	return nil
}

func buildSummary(result *models.LinkCheckResult) summary {
	return summary{
		TotalLinks:      result.TotalLinks,
		CheckedLinks:    result.CheckedLinks,
		WorkingLinks:    result.WorkingLinks,
		DeadLinks:       len(result.DeadLinks),
		SkippedLinks:    result.SkippedLinks,
		RetryableErrors: result.RetryableErrors,
		ForbiddenErrors: result.ForbiddenErrors,
		TimeoutErrors:   result.TimeoutErrors,
		DurationSeconds: result.ProcessingTime.Seconds(),
	}
}

// groupByPost buckets dead links by source post, preserving first-seen
// post order.
func groupByPost(deadLinks []models.DeadLink) []postGroup {
	index := make(map[string]int)
	var groups []postGroup

	for _, dl := range deadLinks {
		i, ok := index[dl.PostID]
		if !ok {
			i = len(groups)
			index[dl.PostID] = i
			groups = append(groups, postGroup{
				PostID:    dl.PostID,
				PostTitle: dl.PostTitle,
				PostSlug:  dl.PostSlug,
			})
		}
		groups[i].DeadLinks = append(groups[i].DeadLinks, dl)
	}
	return groups
}
