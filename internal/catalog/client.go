package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/ratelimit"
)

// Outbound request budget per provider.
const (
	defaultRPS   = 2.0
	defaultBurst = 5
)

// Client searches the primary provider and, for ISBN lookups, falls back
// to a secondary one when the primary has no record.
//
// Identical concurrent calls share one upstream request.
type Client struct {
	primary  Provider
	fallback Provider // optional
	limiter  *ratelimit.KeyedRateLimiter
	group    singleflight.Group
	logger   *slog.Logger
}

// NewClient creates a catalog client. fallback may be nil.
func NewClient(primary, fallback Provider, logger *slog.Logger) *Client {
	return &Client{
		primary:  primary,
		fallback: fallback,
		limiter:  ratelimit.New(defaultRPS, defaultBurst),
		logger:   logger,
	}
}

// Close stops the rate limiter.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Search returns candidate records for a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}

	return c.do(ctx, "q:"+query, func(ctx context.Context) ([]Result, error) {
		return c.call(ctx, c.primary, func(p Provider) ([]Result, error) {
			return p.Search(ctx, query)
		})
	})
}

// LookupISBN returns the record for isbn. The input may contain hyphens
// and spaces. Returns ErrInvalidISBN when it is not a valid ISBN shape.
func (c *Client) LookupISBN(ctx context.Context, raw string) ([]Result, error) {
	isbn := normalize.ISBN(raw)
	if isbn == "" {
		return nil, ErrInvalidISBN
	}

	return c.do(ctx, "isbn:"+isbn, func(ctx context.Context) ([]Result, error) {
		return c.lookupISBN(ctx, isbn)
	})
}

// lookupISBN queries both providers concurrently and prefers the primary.
func (c *Client) lookupISBN(ctx context.Context, isbn string) ([]Result, error) {
	lookup := func(p Provider) ([]Result, error) { return p.LookupISBN(ctx, isbn) }

	if c.fallback == nil {
		return c.call(ctx, c.primary, lookup)
	}

	var (
		g                       errgroup.Group
		primaryRes, fallbackRes []Result
		primaryErr, fallbackErr error
	)
	g.Go(func() error {
		primaryRes, primaryErr = c.call(ctx, c.primary, lookup)
		return nil
	})
	g.Go(func() error {
		fallbackRes, fallbackErr = c.call(ctx, c.fallback, lookup)
		return nil
	})
	_ = g.Wait()

	if primaryErr == nil && len(primaryRes) > 0 {
		return primaryRes, nil
	}
	if fallbackErr == nil && len(fallbackRes) > 0 {
		return fallbackRes, nil
	}

	if primaryErr == nil {
		return []Result{}, nil
	}
	return nil, primaryErr
}

// call waits for the provider's rate budget, then runs fn.
func (c *Client) call(ctx context.Context, p Provider, fn func(Provider) ([]Result, error)) ([]Result, error) {
	if err := c.limiter.Wait(ctx, p.Name()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	res, err := fn(p)
	if err != nil {
		c.logger.Warn("catalog request failed", "provider", p.Name(), "error", err)
		return nil, err
	}
	if res == nil {
		res = []Result{}
	}
	return res, nil
}

// do collapses concurrent calls with the same key. The shared call runs
// detached from any single caller's cancellation; each caller still
// returns as soon as its own ctx is done.
func (c *Client) do(ctx context.Context, key string, fn func(context.Context) ([]Result, error)) ([]Result, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := r.Val.([]Result)
		// Callers may modify their slice.
		out := make([]Result, len(res))
		copy(out, res)
		return out, nil
	}
}
