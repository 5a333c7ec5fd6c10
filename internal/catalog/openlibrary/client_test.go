package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(Config{BaseURL: srv.URL, CoversURL: "https://covers.test"}, logger.Discard())
	t.Cleanup(c.http.CloseIdleConnections)
	return c
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "война и мир", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, searchFields, r.URL.Query().Get("fields"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"numFound": 2,
			"docs": [
				{
					"key": "/works/OL1W",
					"title": "Война и мир",
					"author_name": ["Лев Толстой", "Other"],
					"first_publish_year": 1869,
					"isbn": ["9785170905876", "5170905870"],
					"cover_i": 12345,
					"subject": ["Historical fiction", "War"],
					"number_of_pages_median": 1225
				},
				{"key": "/works/OL2W", "title": "Bare"}
			]
		}`))
	})

	res, err := c.Search(context.Background(), "война и мир")
	require.NoError(t, err)
	require.Len(t, res, 2)

	full := res[0]
	assert.Equal(t, "Война и мир", full.Title)
	assert.Equal(t, "Лев Толстой", full.Author)
	assert.Equal(t, 1869, *full.Year)
	assert.Equal(t, "9785170905876", *full.ISBN)
	assert.Equal(t, "https://covers.test/b/id/12345-M.jpg", *full.Cover)
	assert.Equal(t, "Historical fiction", *full.Genre)
	assert.Equal(t, 1225, *full.Pages)
	assert.Nil(t, full.Description)

	bare := res[1]
	assert.Equal(t, catalog.UnknownAuthor, bare.Author)
	assert.Nil(t, bare.Year)
	assert.Nil(t, bare.ISBN)
	assert.Nil(t, bare.Cover)
	assert.Nil(t, bare.Genre)
	assert.Nil(t, bare.Pages)
}

func TestLookupISBN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		assert.Equal(t, "ISBN:0441013597", r.URL.Query().Get("bibkeys"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "data", r.URL.Query().Get("jscmd"))

		_, _ = w.Write([]byte(`{
			"ISBN:0441013597": {
				"title": "Dune",
				"authors": [{"name": "Frank Herbert"}],
				"publish_date": "August 1990",
				"number_of_pages": 535,
				"subjects": [{"name": "Science fiction"}],
				"cover": {"large": "https://covers.test/L.jpg"},
				"description": {"type": "/type/text", "value": "Spice must flow."}
			}
		}`))
	})

	res, err := c.LookupISBN(context.Background(), "0441013597")
	require.NoError(t, err)
	require.Len(t, res, 1)

	r := res[0]
	assert.Equal(t, "Dune", r.Title)
	assert.Equal(t, "Frank Herbert", r.Author)
	assert.Equal(t, 1990, *r.Year)
	assert.Equal(t, "0441013597", *r.ISBN)
	assert.Equal(t, "https://covers.test/L.jpg", *r.Cover, "large cover used when medium is missing")
	assert.Equal(t, "Science fiction", *r.Genre)
	assert.Equal(t, 535, *r.Pages)
	assert.Equal(t, "Spice must flow.", *r.Description)
}

func TestLookupISBN_StringDescriptionAndNoAuthor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ISBN:0441013597": {"title": "Dune", "description": "Plain.", "cover": {"medium": "m.jpg", "large": "l.jpg"}}}`))
	})

	res, err := c.LookupISBN(context.Background(), "0441013597")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Plain.", *res[0].Description)
	assert.Equal(t, "m.jpg", *res[0].Cover)
	assert.Equal(t, catalog.UnknownAuthor, res[0].Author)
}

func TestLookupISBN_Unknown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	res, err := c.LookupISBN(context.Background(), "0000000000")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Search(context.Background(), "dune")
			assert.ErrorIs(t, err, catalog.ErrUpstream)
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(Config{BaseURL: srv.URL}, logger.Discard())
	_, err := c.LookupISBN(context.Background(), "0441013597")
	assert.ErrorIs(t, err, catalog.ErrUpstream)
}
