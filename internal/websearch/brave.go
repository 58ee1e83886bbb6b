// Package websearch wraps the Brave Search API. The agent pipeline's research
// stage uses it to ground answers in the public web when the knowledge base
// comes up short.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beforest/forest-guide/internal/common/config"
	"github.com/beforest/forest-guide/internal/common/logger"
)

const defaultResultCount = 5

// Result is one web search hit.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Client calls the Brave web search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     logger.Logger
}

func NewClient(cfg config.WebSearchConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     log.WithFields(map[string]interface{}{"component": "websearch"}),
	}
}

type braveResponse struct {
	Web struct {
		Results []Result `json:"results"`
	} `json:"web"`
}

// Search runs a web search. Queries that do not mention the brand are
// prefixed with "Beforest " so results stay on topic.
func (c *Client) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("web search api key not configured")
	}
	if count <= 0 {
		count = defaultResultCount
	}

	q := NormalizeQuery(query)

	endpoint := fmt.Sprintf("%s/res/v1/web/search?q=%s&count=%s",
		c.baseURL, url.QueryEscape(q), strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("web search returned %d: %s", resp.StatusCode, raw)
	}

	var parsed braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	c.logger.Debug("web search completed", map[string]interface{}{
		"query":   q,
		"results": len(parsed.Web.Results),
	})
	return parsed.Web.Results, nil
}

// NormalizeQuery keeps searches anchored to the brand.
func NormalizeQuery(query string) string {
	query = strings.TrimSpace(query)
	if strings.Contains(strings.ToLower(query), "beforest") {
		return query
	}
	return "Beforest " + query
}

// FormatResults renders hits as a compact block for an LLM prompt.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n", i+1, r.Title, r.Description, r.URL)
	}
	return strings.TrimSpace(b.String())
}
