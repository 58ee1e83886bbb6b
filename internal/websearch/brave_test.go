package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beforest/forest-guide/internal/common/config"
	"github.com/beforest/forest-guide/internal/common/logger"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.WebSearchConfig{
		APIKey:  apiKey,
		BaseURL: srv.URL,
		Timeout: 5000,
	}, logger.NewTestLogger(t))
}

func TestClient_Search(t *testing.T) {
	c := newTestClient(t, "brave-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/res/v1/web/search", r.URL.Path)
		assert.Equal(t, "brave-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "Beforest farm stays coorg", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"web": {"results": [
			{"title": "Beforest Coorg", "description": "Farm stays in Coorg.", "url": "https://beforest.co/coorg"}
		]}}`))
	})

	results, err := c.Search(context.Background(), "farm stays coorg", 3)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Beforest Coorg", results[0].Title)
}

func TestClient_Search_BrandQueryNotPrefixed(t *testing.T) {
	c := newTestClient(t, "brave-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "what is beforest", r.URL.Query().Get("q"))
		w.Write([]byte(`{"web": {"results": []}}`))
	})

	_, err := c.Search(context.Background(), "what is beforest", 3)
	require.NoError(t, err)
}

func TestClient_Search_MissingKey(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent without a key")
	})

	_, err := c.Search(context.Background(), "anything", 3)
	assert.Error(t, err)
}

func TestClient_Search_ServerError(t *testing.T) {
	c := newTestClient(t, "brave-key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	})

	_, err := c.Search(context.Background(), "anything", 3)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "Beforest pricing", NormalizeQuery("pricing"))
	assert.Equal(t, "beforest collectives", NormalizeQuery("beforest collectives"))
	assert.Equal(t, "Beforest", NormalizeQuery("Beforest"))
}

func TestFormatResults(t *testing.T) {
	out := FormatResults([]Result{
		{Title: "A", Description: "first", URL: "https://a"},
		{Title: "B", Description: "second", URL: "https://b"},
	})
	assert.Contains(t, out, "1. A")
	assert.Contains(t, out, "2. B")
	assert.Contains(t, out, "https://b")

	assert.Empty(t, FormatResults(nil))
}
