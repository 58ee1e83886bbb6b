// Package knowledge answers the router's fast paths from data the service
// already holds: an Elasticsearch index of knowledge snippets and a Postgres
// product catalog.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/beforest/forest-guide/internal/pipeline/router"
)

// Searcher queries the knowledge index. Ranking is Elasticsearch's own
// relevance scoring with a title boost.
type Searcher struct {
	es    *elasticsearch.Client
	index string
}

func NewSearcher(es *elasticsearch.Client, index string) *Searcher {
	return &Searcher{es: es, index: index}
}

type searchHit struct {
	Source struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		Content  string `json:"content"`
		Category string `json:"category"`
	} `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// Search returns the top rows for a free-text query.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]router.KnowledgeRow, error) {
	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "content", "category"},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("knowledge search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("knowledge search returned %s: %s", res.Status(), raw)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	rows := make([]router.KnowledgeRow, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		rows = append(rows, router.KnowledgeRow{
			Title:    hit.Source.Title,
			URL:      hit.Source.URL,
			Content:  hit.Source.Content,
			Category: hit.Source.Category,
		})
	}
	return rows, nil
}
