// Package googlebooks is a catalog.Provider backed by the Google Books
// volumes API. It is used for ISBN lookups OpenLibrary cannot answer.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"
	defaultTimeout = 10 * time.Second
	searchLimit    = 10
	maxBodyBytes   = 4 << 20
)

var _ catalog.Provider = (*Client)(nil)

// Config configures the client. Zero values use the public endpoint.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client queries the volumes endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *slog.Logger
}

// New creates a Google Books client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// Name implements catalog.Provider.
func (c *Client) Name() string { return "googlebooks" }

// Search runs a free-text volumes query.
func (c *Client) Search(ctx context.Context, query string) ([]catalog.Result, error) {
	vols, err := c.volumes(ctx, query)
	if err != nil {
		return nil, err
	}
	results := make([]catalog.Result, 0, len(vols))
	for _, v := range vols {
		results = append(results, fromVolume(v.VolumeInfo, ""))
	}
	return results, nil
}

// LookupISBN returns at most one record for isbn.
func (c *Client) LookupISBN(ctx context.Context, isbn string) ([]catalog.Result, error) {
	vols, err := c.volumes(ctx, "isbn:"+isbn)
	if err != nil {
		return nil, err
	}
	if len(vols) == 0 {
		return []catalog.Result{}, nil
	}
	return []catalog.Result{fromVolume(vols[0].VolumeInfo, isbn)}, nil
}

// fromVolume maps a volume. When isbn is empty the volume's own ISBN-13
// (or ISBN-10) identifier is used.
func fromVolume(v volumeInfo, isbn string) catalog.Result {
	if isbn == "" {
		isbn = v.isbn()
	}

	var genre string
	if len(v.Categories) > 0 {
		genre = v.Categories[0]
	}

	cover := v.ImageLinks.Thumbnail
	if cover == "" {
		cover = v.ImageLinks.SmallThumbnail
	}
	cover = strings.Replace(cover, "http://", "https://", 1)

	return catalog.Result{
		Title:       v.Title,
		Author:      catalog.FirstOr(v.Authors, catalog.UnknownAuthor),
		Year:        catalog.YearFromDate(v.PublishedDate),
		ISBN:        catalog.StringPtr(isbn),
		Cover:       catalog.StringPtr(cover),
		Genre:       catalog.StringPtr(genre),
		Pages:       catalog.IntPtr(v.PageCount),
		Description: catalog.StringPtr(catalog.DescriptionMarkdown(v.Description)),
	}
}

func (c *Client) volumes(ctx context.Context, query string) ([]volume, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", fmt.Sprint(searchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("googlebooks request", "query", query)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: googlebooks: %w", catalog.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: googlebooks returned status %d", catalog.ErrUpstream, resp.StatusCode)
	}

	var body volumesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: googlebooks: decode response: %w", catalog.ErrUpstream, err)
	}
	return body.Items, nil
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	PublishedDate       string   `json:"publishedDate"`
	Description         string   `json:"description"`
	PageCount           int      `json:"pageCount"`
	Categories          []string `json:"categories"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
	ImageLinks struct {
		SmallThumbnail string `json:"smallThumbnail"`
		Thumbnail      string `json:"thumbnail"`
	} `json:"imageLinks"`
}

func (v volumeInfo) isbn() string {
	var isbn10 string
	for _, id := range v.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}
