// Package contentstore is the client boundary to the external article
// store. The audit engine only reads from it.
package contentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dtnitsch/dead-link-audit/models"
)

// Client fetches published articles page by page.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a content-store client for the given base URL,
// e.g. "https://dashboard.example.com/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type postsResponse struct {
	Posts []models.Article `json:"posts"`
	Total int              `json:"total"`
}

// FetchArticles returns one page of articles. Page numbering starts at 1.
// An unreachable store is a hard error: without articles there is nothing
// to probe.
func (c *Client) FetchArticles(ctx context.Context, page, pageSize int) ([]models.Article, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("limit", fmt.Sprintf("%d", pageSize))

	endpoint := fmt.Sprintf("%s/posts?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build content store request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach content store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content store returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read content store response: %w", err)
	}

	var parsed postsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode content store response: %w", err)
	}

	return parsed.Posts, nil
}

// FetchAll pages through the store until max articles are collected or a
// short page signals the end of the corpus.
func (c *Client) FetchAll(ctx context.Context, max, pageSize int) ([]models.Article, error) {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	var articles []models.Article
	for page := 1; ; page++ {
		batch, err := c.FetchArticles(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		articles = append(articles, batch...)

		if len(batch) < pageSize {
			break // last page
		}
		if max > 0 && len(articles) >= max {
			break
		}
	}

	if max > 0 && len(articles) > max {
		articles = articles[:max]
	}
	return articles, nil
}
