package knowledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *Searcher {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewSearcher(es, "knowledge_items")
}

func TestSearcher_Search(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "knowledge_items")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {"hits": [
				{"_source": {"title": "Coorg Collective", "url": "https://beforest.co/coorg", "content": "128 acres of coffee and forest.", "category": "collectives"}},
				{"_source": {"title": "Poomaale", "url": "https://beforest.co/poomaale", "content": "Beside the Brahmagiri range.", "category": "collectives"}}
			]}
		}`))
	})

	rows, err := s.Search(context.Background(), "coorg", 3)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Coorg Collective", rows[0].Title)
	assert.Equal(t, "128 acres of coffee and forest.", rows[0].Content)
	assert.Equal(t, "collectives", rows[1].Category)
}

func TestSearcher_Search_ServerError(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "shard failure"}`))
	})

	_, err := s.Search(context.Background(), "coorg", 3)
	assert.Error(t, err)
}

func TestProductCatalog_LookupByBrand(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, category, availability, price_text").
		WithArgs("bewild", 12).
		WillReturnRows(sqlmock.NewRows(
			[]string{"name", "category", "availability", "price_text"},
		).
			AddRow("Rosella infusion", "infusions", "in stock", "Rs 350").
			AddRow("Forest honey", "honey", "in stock", "Rs 600"))

	catalog := NewProductCatalog(db)
	rows, err := catalog.LookupByBrand(context.Background(), "bewild", 12)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Rosella infusion", rows[0].Name)
	assert.Equal(t, "honey", rows[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCatalog_LookupByBrand_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, category, availability, price_text").
		WillReturnError(assert.AnError)

	catalog := NewProductCatalog(db)
	_, err = catalog.LookupByBrand(context.Background(), "bewild", 12)
	assert.Error(t, err)
}
