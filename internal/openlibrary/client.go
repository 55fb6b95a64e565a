package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"booklist/internal/metrics"
)

const (
	DefaultBaseURL = "https://openlibrary.org"

	defaultTimeout = 10 * time.Second

	// Upper bound on a response body we are willing to decode
	maxBodyBytes = 8 << 20
)

// Client issues read-only requests against the Open Library API.
// One call per invocation: no retries, no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient creates a new Open Library API client
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchWork fetches a work's metadata by its bare key (e.g. "OL45883W").
// A "/works/" prefix on the key is tolerated.
func (c *Client) FetchWork(ctx context.Context, key string) (*Work, error) {
	bare := NormalizeWorkKey(key)
	if bare == "" {
		return nil, wrapError("work", key, ErrNotFound, errors.New("empty key"))
	}

	var work Work
	if err := c.doRequest(ctx, "work", key, "/works/"+url.PathEscape(bare)+".json", nil, &work); err != nil {
		return nil, err
	}
	return &work, nil
}

// FetchAuthor fetches an author record by its catalog key (e.g. "/authors/OL23919A").
func (c *Client) FetchAuthor(ctx context.Context, authorKey string) (*Author, error) {
	path := strings.Trim(authorKey, "/")
	if path == "" {
		return nil, wrapError("author", authorKey, ErrNotFound, errors.New("empty key"))
	}

	var author Author
	if err := c.doRequest(ctx, "author", authorKey, "/"+path+".json", nil, &author); err != nil {
		return nil, err
	}
	if author.Name == "" {
		return nil, wrapError("author", authorKey, ErrMalformed, errors.New("missing name"))
	}
	return &author, nil
}

// Trending fetches the currently trending works.
func (c *Client) Trending(ctx context.Context, limit int) ([]Doc, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var response TrendingResponse
	if err := c.doRequest(ctx, "trending", "", "/trending/now.json", params, &response); err != nil {
		return nil, err
	}
	return response.Works, nil
}

// Search runs a free-text and/or subject search.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]Doc, error) {
	params := url.Values{}
	if q.Term != "" {
		params.Set("q", q.Term)
	}
	if q.Subject != "" {
		params.Set("subject", q.Subject)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var response SearchResponse
	if err := c.doRequest(ctx, "search", q.Term, "/search.json", params, &response); err != nil {
		return nil, err
	}
	return response.Docs, nil
}

// doRequest performs a GET bounded by the client timeout and the caller's context,
// mapping every failure onto ErrNotFound, ErrUnavailable or ErrMalformed.
func (c *Client) doRequest(ctx context.Context, op, key, path string, params url.Values, result any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogRequest(op, outcome(err), time.Since(start))
	}()

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return wrapError(op, key, ErrMalformed, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "BookList/1.0")

	c.logger.Debug("catalog request", "op", op, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed",
			"op", op,
			"key", key,
			"elapsed", time.Since(start),
			"error", err,
		)
		return wrapError(op, key, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return wrapError(op, key, ErrUnavailable, fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return wrapError(op, key, ErrNotFound, nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return wrapError(op, key, ErrUnavailable, fmt.Errorf("HTTP %d", resp.StatusCode))
	default:
		return wrapError(op, key, ErrUnavailable, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return wrapError(op, key, ErrMalformed, fmt.Errorf("decode: %w", err))
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unavailable"
	}
}

// NormalizeWorkKey strips the "/works/" prefix the catalog uses in listings.
func NormalizeWorkKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(key, "/")
	key = strings.TrimPrefix(key, "works/")
	return key
}

// CoverURL builds the medium-size cover image URL for a numeric cover id.
func CoverURL(coverID string) string {
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%s-M.jpg", coverID)
}
