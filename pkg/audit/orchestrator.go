// Package audit drives one end-to-end dead-link audit over a set of
// articles: extraction, cache-checked probing with bounded concurrency,
// archive enrichment, and incremental progress reporting.
package audit

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dtnitsch/dead-link-audit/models"
	"github.com/dtnitsch/dead-link-audit/pkg/archive"
	"github.com/dtnitsch/dead-link-audit/pkg/probe"
)

// currentItemMax bounds the display form of the URL in progress events.
const currentItemMax = 50

// Extractor produces the external links of one article body.
type Extractor interface {
	Extract(rawHTML string) []models.ExtractedLink
}

// Prober checks liveness of a single URL.
type Prober interface {
	Probe(ctx context.Context, rawURL string) models.ProbeOutcome
}

// Resolver proposes recovery paths for a dead URL.
type Resolver interface {
	Resolve(ctx context.Context, deadURL string) archive.Result
}

// Options tunes a batch run. Workers is the number of articles processed
// concurrently; within one article links are probed sequentially with
// RequestDelay between probes to stay under remote rate limits.
type Options struct {
	Workers      int
	RequestDelay time.Duration
	Logger       *slog.Logger
}

// Orchestrator walks a set of articles and aggregates a LinkCheckResult.
// The probe cache is injected so callers control its lifetime and tests
// run isolated.
type Orchestrator struct {
	extractor Extractor
	prober    Prober
	cache     *probe.Cache
	resolver  Resolver
	workers   int
	delay     time.Duration
	logger    *slog.Logger
}

// New wires an Orchestrator. A nil cache gets a fresh one; a nil logger
// discards.
func New(extractor Extractor, prober Prober, cache *probe.Cache, resolver Resolver, opts Options) *Orchestrator {
	if cache == nil {
		cache = probe.NewCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = models.DefaultWorkers
	}
	return &Orchestrator{
		extractor: extractor,
		prober:    prober,
		cache:     cache,
		resolver:  resolver,
		workers:   workers,
		delay:     opts.RequestDelay,
		logger:    logger,
	}
}

type articleLinks struct {
	article models.Article
	links   []models.ExtractedLink
}

// Run executes one batch run. Progress events are sent on progress (may
// be nil) in probe order with strictly increasing Current, and the
// channel is closed when the run ends. Cancellation is checked between
// links; on cancellation the accumulated partial result is returned.
// A single bad link or article never aborts the batch.
func (o *Orchestrator) Run(ctx context.Context, articles []models.Article, progress chan<- models.Progress) *models.LinkCheckResult {
	start := time.Now()
	result := &models.LinkCheckResult{DeadLinks: []models.DeadLink{}}
	if progress != nil {
		defer close(progress)
	}

	// Pre-pass: extract everything first so progress percentages have a
	// denominator before any probing starts.
	items := make([]articleLinks, 0, len(articles))
	total := 0
	for _, article := range articles {
		links := o.extractor.Extract(article.HTML)
		items = append(items, articleLinks{article: article, links: links})
		total += len(links)
	}
	result.TotalLinks = total
	o.logger.Info("Starting audit run", "articles", len(articles), "links", total, "workers", o.workers)

	tr := &tracker{result: result, total: total, progress: progress}

	// Fixed-size batches of concurrently processed articles cap peak
	// outstanding requests.
	for batchStart := 0; batchStart < len(items); batchStart += o.workers {
		if ctx.Err() != nil {
			o.logger.Warn("Run cancelled, returning partial results", "checked", tr.current())
			break
		}
		batchEnd := batchStart + o.workers
		if batchEnd > len(items) {
			batchEnd = len(items)
		}

		var wg sync.WaitGroup
		for _, item := range items[batchStart:batchEnd] {
			wg.Add(1)
			go func(it articleLinks) {
				defer wg.Done()
				o.processArticle(ctx, it, tr)
			}(item)
		}
		wg.Wait()
	}

	tr.complete(ctx.Err() != nil)
	result.ProcessingTime = time.Since(start)
	o.logger.Info("Audit run finished",
		"checked", result.CheckedLinks,
		"working", result.WorkingLinks,
		"dead", len(result.DeadLinks),
		"skipped", result.SkippedLinks,
		"duration", result.ProcessingTime)
	return result
}

// processArticle probes one article's links sequentially with the
// configured inter-request delay. A panic while handling the article is
// logged and its remaining links counted as skipped.
func (o *Orchestrator) processArticle(ctx context.Context, item articleLinks, tr *tracker) {
	processed := 0
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Article processing panicked, skipping remainder",
				"post_id", item.article.ID, "panic", r)
			tr.skip(len(item.links) - processed)
		}
	}()

	for i, link := range item.links {
		if ctx.Err() != nil {
			return
		}

		outcome, hit := o.cache.Get(link.URL)
		if !hit {
			outcome = o.prober.Probe(ctx, link.URL)
			o.cache.Set(link.URL, outcome)
		} else {
			o.logger.Debug("Cache hit", "url", link.URL)
		}

		if outcome.Alive() {
			tr.working(link.URL)
		} else {
			tr.dead(o.buildDeadLink(ctx, item.article, link, outcome), outcome)
		}
		processed = i + 1

		if o.delay > 0 && i < len(item.links)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.delay):
			}
		}
	}
}

// buildDeadLink assembles the terminal record for a failing URL,
// enriched with archive snapshots and recovery suggestions. When the
// resolver found captures, the newest one becomes the archive URL and
// all of them rank ahead of the generic suggestions.
func (o *Orchestrator) buildDeadLink(ctx context.Context, article models.Article, link models.ExtractedLink, outcome models.ProbeOutcome) models.DeadLink {
	resolved := o.resolver.Resolve(ctx, link.URL)

	archiveURL := resolved.ArchiveURL
	suggestions := resolved.Suggestions
	if len(resolved.Snapshots) > 0 {
		archiveURL = resolved.Snapshots[0]
		suggestions = make([]string, 0, len(resolved.Snapshots)+len(resolved.Suggestions))
		suggestions = append(suggestions, resolved.Snapshots...)
		suggestions = append(suggestions, resolved.Suggestions...)
	}

	return models.DeadLink{
		URL:         link.URL,
		Status:      outcome.Status,
		Error:       outcome.Error,
		Context:     link.Context,
		PostID:      article.ID,
		PostTitle:   article.Title,
		PostSlug:    article.Slug,
		ArchiveURL:  archiveURL,
		Suggestions: suggestions,
		Retryable:   outcome.Retryable,
		CheckedAt:   time.Now(),
	}
}

// tracker owns all mutation of the shared result. Progress events are
// emitted under the same lock that advances the counter, which keeps
// Current strictly monotonic across concurrent articles.
type tracker struct {
	mu       sync.Mutex
	result   *models.LinkCheckResult
	total    int
	checked  int
	progress chan<- models.Progress
}

func (t *tracker) working(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.WorkingLinks++
	t.advance(url)
}

func (t *tracker) dead(dl models.DeadLink, outcome models.ProbeOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.DeadLinks = append(t.result.DeadLinks, dl)
	if outcome.Retryable {
		t.result.RetryableErrors++
	}
	if outcome.StatusCode() == 403 {
		t.result.ForbiddenErrors++
	}
	if outcome.Error == "Request timeout" {
		t.result.TimeoutErrors++
	}
	t.advance(dl.URL)
}

func (t *tracker) skip(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.result.SkippedLinks += n
}

// advance must be called with t.mu held.
func (t *tracker) advance(url string) {
	t.checked++
	t.result.CheckedLinks++
	if t.progress == nil {
		return
	}
	t.progress <- models.Progress{
		Current:     t.checked,
		Total:       t.total,
		Percentage:  percentage(t.checked, t.total),
		CurrentItem: truncate(url, currentItemMax),
		Status:      models.ProgressChecking,
	}
}

func (t *tracker) current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checked
}

// complete emits the terminal event: 100% for a finished run, the
// percentage actually reached for a cancelled one.
func (t *tracker) complete(cancelled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.progress == nil {
		return
	}
	event := models.Progress{
		Current:    t.checked,
		Total:      t.total,
		Percentage: 100,
		Status:     models.ProgressComplete,
	}
	if cancelled {
		event.Percentage = percentage(t.checked, t.total)
		event.Status = models.ProgressCancelled
	}
	t.progress <- event
}

func percentage(current, total int) int {
	if total == 0 {
		return 100
	}
	return current * 100 / total
}

// truncate shortens s to max characters, slicing on rune boundaries so
// multibyte URLs stay valid UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
