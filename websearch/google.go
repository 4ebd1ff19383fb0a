package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEndpoint   = "https://customsearch.googleapis.com/customsearch/v1"
	defaultTimeout    = 10 * time.Second
	defaultNumResults = 3
)

// Client queries the Google Custom Search JSON API. It is safe for
// concurrent use. Search degrades to an empty string on any failure so
// callers never have to distinguish "no results" from "search broke";
// both mean the answer proceeds without web context.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	engineID   string
	numResults int
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the default HTTP client. Useful for tests and
// for callers that manage their own transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		if strings.TrimSpace(endpoint) == "" {
			return fmt.Errorf("endpoint cannot be empty")
		}
		c.endpoint = endpoint
		return nil
	}
}

// WithNumResults sets the result count used when a Search call does not
// specify one.
func WithNumResults(n int) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("numResults must be positive, got %d", n)
		}
		c.numResults = n
		return nil
	}
}

// WithLogger sets the logger used for degraded-search warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger.With("component", "websearch")
		return nil
	}
}

// NewClient creates a Custom Search client. apiKey and engineID are the
// Google API key and the programmable search engine ID (cx).
func NewClient(apiKey, engineID string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAPIKeyRequired
	}
	if strings.TrimSpace(engineID) == "" {
		return nil, ErrEngineIDRequired
	}

	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   defaultEndpoint,
		apiKey:     apiKey,
		engineID:   engineID,
		numResults: defaultNumResults,
		logger:     slog.Default().With("component", "websearch"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Search runs one Custom Search query and formats the top numResults hits
// as "title\nsnippet\nlink" blocks separated by blank lines. Any failure
// (network, non-2xx status, malformed body) is logged and yields "".
func (c *Client) Search(ctx context.Context, query string, numResults int) string {
	if numResults <= 0 {
		numResults = c.numResults
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Warn("failed to build search request", "error", err)
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("web search request failed", "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("web search returned non-OK status", "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read search response", "error", err)
		return ""
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("failed to decode search response", "error", err)
		return ""
	}

	items := parsed.Items
	if len(items) > numResults {
		items = items[:numResults]
	}

	blocks := make([]string, 0, len(items))
	for _, item := range items {
		blocks = append(blocks, item.Title+"\n"+item.Snippet+"\n"+item.Link)
	}
	return strings.Join(blocks, "\n\n")
}
