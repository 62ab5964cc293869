// Package archive looks up historical snapshots of dead URLs and
// synthesizes recovery suggestions for human review.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultEndpoint is the Wayback Machine CDX index.
const DefaultEndpoint = "https://web.archive.org/cdx/search/cdx"

// maxSnapshots caps how many historical captures one lookup requests.
const maxSnapshots = 5

// Result is what the resolver produced for one dead URL. ArchiveURL is a
// browsable calendar page for the target; Snapshots are direct capture
// URLs, newest first, when the index had any.
type Result struct {
	ArchiveURL  string   `json:"archive_url"`
	Snapshots   []string `json:"snapshots,omitempty"`
	Suggestions []string `json:"suggestions"`
}

// Resolver queries a public snapshot index. All failures degrade silently
// to generic suggestions; Resolve never returns an error.
type Resolver struct {
	client   *http.Client
	endpoint string
}

// NewResolver returns a Resolver against the given CDX endpoint, or the
// Wayback Machine when endpoint is empty.
func NewResolver(endpoint string) *Resolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Resolver{
		client:   &http.Client{Timeout: 15 * time.Second},
		endpoint: endpoint,
	}
}

// Resolve looks up historical captures of a dead URL. The archive
// calendar URL and the generic suggestions are always filled in, so the
// caller gets something useful even when the index is unreachable.
func (r *Resolver) Resolve(ctx context.Context, deadURL string) Result {
	result := Result{
		ArchiveURL:  "https://web.archive.org/web/*/" + deadURL,
		Suggestions: genericSuggestions(deadURL),
	}

	result.Snapshots = r.lookupSnapshots(ctx, deadURL)
	return result
}

// lookupSnapshots queries the CDX API. The response is a JSON array of
// arrays whose first row is a header; each remaining row carries a
// 14-digit timestamp and the original URL.
func (r *Resolver) lookupSnapshots(ctx context.Context, deadURL string) []string {
	query := url.Values{}
	query.Set("url", deadURL)
	query.Set("output", "json")
	query.Set("limit", fmt.Sprintf("-%d", maxSnapshots)) // negative limit = newest captures
	query.Set("fl", "timestamp,original")
	query.Set("filter", "statuscode:200")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}

	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil
	}
	if len(rows) < 2 {
		// Row 0 is the header; no captures beyond it.
		return nil
	}

	snapshots := make([]string, 0, len(rows)-1)
	// Walk data rows newest-first.
	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if len(row) < 2 || len(row[0]) != 14 {
			continue
		}
		snapshots = append(snapshots, fmt.Sprintf("https://web.archive.org/web/%s/%s", row[0], row[1]))
	}
	if len(snapshots) == 0 {
		return nil
	}
	return snapshots
}

// genericSuggestions builds the fallback recovery hints shown when no
// snapshot could be found.
func genericSuggestions(deadURL string) []string {
	suggestions := []string{}

	parsed, err := url.Parse(deadURL)
	if err != nil || parsed.Hostname() == "" {
		return []string{"Verify the URL is spelled correctly and try again in a browser"}
	}
	host := parsed.Hostname()

	suggestions = append(suggestions,
		fmt.Sprintf("Check whether the site is still online: %s://%s/", parsed.Scheme, host),
		fmt.Sprintf("Search the site for moved content: https://www.google.com/search?q=site:%s", host),
	)

	if keyword := keywordFromPath(parsed.Path); keyword != "" {
		suggestions = append(suggestions,
			fmt.Sprintf("Search the web for: %q", keyword))
	}

	suggestions = append(suggestions,
		fmt.Sprintf("The content may have moved to a new domain; check %s for a redirect notice", host))

	return suggestions
}

// keywordFromPath derives a search phrase from the last path segment:
// extension stripped, dashes and underscores turned into spaces.
func keywordFromPath(urlPath string) string {
	segment := path.Base(strings.TrimRight(urlPath, "/"))
	if segment == "." || segment == "/" || segment == "" {
		return ""
	}
	segment = strings.TrimSuffix(segment, path.Ext(segment))
	segment = strings.ReplaceAll(segment, "-", " ")
	segment = strings.ReplaceAll(segment, "_", " ")
	return strings.TrimSpace(segment)
}
