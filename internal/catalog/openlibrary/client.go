// Package openlibrary is a catalog.Provider backed by the OpenLibrary API.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
)

const (
	defaultBaseURL   = "https://openlibrary.org"
	defaultCoversURL = "https://covers.openlibrary.org"
	defaultTimeout   = 10 * time.Second

	searchLimit  = 10
	searchFields = "key,title,author_name,first_publish_year,isbn,cover_i,subject,number_of_pages_median"

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 4 << 20
)

var _ catalog.Provider = (*Client)(nil)

// Config configures the client. Zero values use the public endpoints.
type Config struct {
	BaseURL   string
	CoversURL string
	Timeout   time.Duration
}

// Client queries OpenLibrary search and books APIs.
type Client struct {
	http      *http.Client
	baseURL   string
	coversURL string
	logger    *slog.Logger
}

// New creates an OpenLibrary client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.CoversURL == "" {
		cfg.CoversURL = defaultCoversURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		coversURL: cfg.CoversURL,
		logger:    logger,
	}
}

// Name implements catalog.Provider.
func (c *Client) Name() string { return "openlibrary" }

// Search runs a free-text query against /search.json.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Result, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(searchLimit))
	q.Set("fields", searchFields)

	var resp searchResponse
	if err := c.getJSON(ctx, "/search.json", q, &resp); err != nil {
		return nil, err
	}

	results := make([]catalog.Result, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		results = append(results, c.fromSearchDoc(d))
	}
	return results, nil
}

// LookupISBN fetches one record from /api/books. isbn must already be
// normalized. An unknown ISBN yields an empty slice.
func (c *Client) LookupISBN(ctx context.Context, isbn string) ([]catalog.Result, error) {
	key := "ISBN:" + isbn

	q := url.Values{}
	q.Set("bibkeys", key)
	q.Set("format", "json")
	q.Set("jscmd", "data")

	var resp map[string]bookData
	if err := c.getJSON(ctx, "/api/books", q, &resp); err != nil {
		return nil, err
	}

	data, ok := resp[key]
	if !ok {
		return []catalog.Result{}, nil
	}
	return []catalog.Result{fromBookData(data, isbn)}, nil
}

func (c *Client) fromSearchDoc(d searchDoc) catalog.Result {
	r := catalog.Result{
		Title:  d.Title,
		Author: catalog.FirstOr(d.AuthorName, catalog.UnknownAuthor),
		Year:   catalog.IntPtr(d.FirstPublishYear),
		ISBN:   catalog.StringPtr(catalog.FirstOr(d.ISBN, "")),
		Genre:  catalog.StringPtr(catalog.FirstOr(d.Subject, "")),
		Pages:  catalog.IntPtr(d.NumberOfPagesMedian),
	}
	if d.CoverID > 0 {
		cover := fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, d.CoverID)
		r.Cover = &cover
	}
	return r
}

func fromBookData(d bookData, isbn string) catalog.Result {
	var author, genre string
	if len(d.Authors) > 0 {
		author = d.Authors[0].Name
	}
	if len(d.Subjects) > 0 {
		genre = d.Subjects[0].Name
	}
	cover := d.Cover.Medium
	if cover == "" {
		cover = d.Cover.Large
	}

	return catalog.Result{
		Title:       d.Title,
		Author:      catalog.FirstOr([]string{author}, catalog.UnknownAuthor),
		Year:        catalog.YearFromDate(d.PublishDate),
		ISBN:        catalog.StringPtr(isbn),
		Cover:       catalog.StringPtr(cover),
		Genre:       catalog.StringPtr(genre),
		Pages:       catalog.IntPtr(d.NumberOfPages),
		Description: catalog.StringPtr(d.Description.Text),
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	u := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Bookshelf/1.0")

	c.logger.Debug("openlibrary request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: openlibrary: %w", catalog.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: openlibrary returned status %d", catalog.ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%w: openlibrary: decode response: %w", catalog.ErrUpstream, err)
	}
	return nil
}
