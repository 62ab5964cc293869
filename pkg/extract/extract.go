// Package extract pulls candidate external URLs and their surrounding
// textual context out of raw article HTML.
package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/dead-link-audit/models"
)

// contextRadius is the plain-text window kept on each side of a link.
const contextRadius = 50

var (
	bareURLRe = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)
	tagRe     = regexp.MustCompile(`<[^>]*>`)
)

// entities is the explicit character-entity table used when stripping
// markup for context windows. Covers the entities that actually occur in
// post bodies; anything rarer passes through literally.
var entities = [][2]string{
	{"&nbsp;", " "},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&apos;", "'"},
	{"&rsquo;", "'"},
	{"&lsquo;", "'"},
	{"&rdquo;", `"`},
	{"&ldquo;", `"`},
	{"&mdash;", "-"},
	{"&ndash;", "-"},
	{"&hellip;", "..."},
	{"&amp;", "&"}, // must come last so double-encoded text resolves once
}

// Extractor finds outbound links in article markup. URLs on the site's
// own domains (or relative paths, fragments, and non-http schemes) are
// internal and skipped.
type Extractor struct {
	siteDomains []string
}

// NewExtractor returns an Extractor that treats the given domains as the
// site's own. Subdomains of a configured domain also count as internal.
func NewExtractor(siteDomains ...string) *Extractor {
	domains := make([]string, 0, len(siteDomains))
	for _, d := range siteDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return &Extractor{siteDomains: domains}
}

// Extract returns the deduplicated, ordered sequence of external links in
// one article body. Extraction runs two passes: anchor hrefs first, then
// bare http(s) tokens in the remaining plain text, so links pasted as
// plain text are not missed and anchored links are not double-counted.
// Malformed markup degrades to zero links, never to an error.
func (e *Extractor) Extract(rawHTML string) []models.ExtractedLink {
	seen := make(map[string]bool)
	var links []models.ExtractedLink

	add := func(rawURL string) {
		candidate := strings.TrimSpace(rawURL)
		if !e.isExternal(candidate) {
			return
		}
		if seen[candidate] {
			return
		}
		seen[candidate] = true
		links = append(links, models.ExtractedLink{
			URL:     candidate,
			Context: contextFor(rawHTML, candidate),
		})
	}

	// Pass 1: anchor hrefs. goquery decodes entities in attribute values
	// (href="...&amp;..." comes back with a plain &).
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err == nil {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			add(href)
		})

		// Pass 2: bare URLs in the visible text.
		for _, match := range bareURLRe.FindAllString(doc.Text(), -1) {
			add(trimTrailingPunct(match))
		}
	} else {
		// Unparseable markup: fall back to a raw scan so a broken tag
		// doesn't hide every link in the article.
		for _, match := range bareURLRe.FindAllString(rawHTML, -1) {
			add(trimTrailingPunct(match))
		}
	}

	return links
}

// isExternal reports whether the candidate is an absolute http(s) URL
// pointing off-site. Fragments, mailto:/tel:/javascript: schemes, and
// site-relative paths are internal by definition.
func (e *Extractor) isExternal(candidate string) bool {
	if candidate == "" || strings.HasPrefix(candidate, "#") {
		return false
	}
	lower := strings.ToLower(candidate)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	for _, domain := range e.siteDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return false
		}
	}
	return true
}

// contextFor returns the tag-stripped text window around the first
// occurrence of the URL in the raw markup.
func contextFor(rawHTML, linkURL string) string {
	idx := strings.Index(rawHTML, linkURL)
	if idx < 0 {
		// Anchor hrefs come back entity-decoded; look for the encoded form.
		idx = strings.Index(rawHTML, strings.ReplaceAll(linkURL, "&", "&amp;"))
	}
	if idx < 0 {
		return ""
	}

	// Take a generous raw window so stripped tags still leave enough text,
	// then clamp the plain text to the configured radius.
	start := idx - contextRadius*3
	if start < 0 {
		start = 0
	}
	end := idx + len(linkURL) + contextRadius*3
	if end > len(rawHTML) {
		end = len(rawHTML)
	}
	// Align the window to rune boundaries.
	for start < idx && !utf8.RuneStart(rawHTML[start]) {
		start++
	}
	for end < len(rawHTML) && !utf8.RuneStart(rawHTML[end]) {
		end++
	}

	plain := StripTags(rawHTML[start:end])
	// Clamp on rune boundaries; byte slicing could split multibyte text.
	runes := []rune(plain)
	if len(runes) > contextRadius*2 {
		mid := len(runes) / 2
		lo := mid - contextRadius
		if lo < 0 {
			lo = 0
		}
		hi := mid + contextRadius
		if hi > len(runes) {
			hi = len(runes)
		}
		plain = string(runes[lo:hi])
	}
	return strings.TrimSpace(plain)
}

// StripTags removes HTML tags, decodes common character entities, and
// collapses whitespace.
func StripTags(fragment string) string {
	text := tagRe.ReplaceAllString(fragment, " ")
	for _, pair := range entities {
		text = strings.ReplaceAll(text, pair[0], pair[1])
	}
	return strings.Join(strings.Fields(text), " ")
}

// trimTrailingPunct drops sentence punctuation that the bare-URL regex
// drags in when a link ends a sentence.
func trimTrailingPunct(u string) string {
	return strings.TrimRight(u, ".,;:!?")
}
