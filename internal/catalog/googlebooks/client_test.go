package googlebooks

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
	c := New(Config{BaseURL: srv.URL}, logger.Discard())
	t.Cleanup(c.http.CloseIdleConnections)
	return c
}

func TestLookupISBN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "isbn:9780441013593", r.URL.Query().Get("q"))

		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"id": "v1",
				"volumeInfo": {
					"title": "Dune",
					"authors": ["Frank Herbert"],
					"publishedDate": "2005-08-02",
					"description": "<p>Set on the desert planet <b>Arrakis</b>.</p>",
					"pageCount": 617,
					"categories": ["Fiction"],
					"imageLinks": {"thumbnail": "http://books.test/thumb.jpg"}
				}
			}]
		}`))
	})

	res, err := c.LookupISBN(context.Background(), "9780441013593")
	require.NoError(t, err)
	require.Len(t, res, 1)

	r := res[0]
	assert.Equal(t, "Dune", r.Title)
	assert.Equal(t, "Frank Herbert", r.Author)
	assert.Equal(t, 2005, *r.Year)
	assert.Equal(t, "9780441013593", *r.ISBN)
	assert.Equal(t, "https://books.test/thumb.jpg", *r.Cover)
	assert.Equal(t, "Fiction", *r.Genre)
	assert.Equal(t, 617, *r.Pages)
	assert.Equal(t, "Set on the desert planet **Arrakis**.", *r.Description)
}

func TestLookupISBN_NoItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	})

	res, err := c.LookupISBN(context.Background(), "9780441013593")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearch_UsesVolumeISBN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [{"volumeInfo": {
			"title": "Emma",
			"industryIdentifiers": [
				{"type": "ISBN_10", "identifier": "0141439580"},
				{"type": "ISBN_13", "identifier": "9780141439587"}
			]
		}}]}`))
	})

	res, err := c.Search(context.Background(), "emma")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "9780141439587", *res[0].ISBN)
	assert.Equal(t, catalog.UnknownAuthor, res[0].Author)
	assert.Nil(t, res[0].Description)
}

func TestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.LookupISBN(context.Background(), "9780441013593")
	assert.ErrorIs(t, err, catalog.ErrUpstream)
}
