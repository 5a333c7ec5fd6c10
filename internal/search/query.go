package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Limits on the number of hits per query.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params configures a search.
type Params struct {
	UserID string // required; hits are restricted to this user's books
	Query  string
	Status string // exact status, optional
	Genre  string // exact tag (case-insensitive), optional
	Limit  int
}

// Result is a page of hits ordered by score.
type Result struct {
	Total  uint64
	TookMs int64
	Hits   []Hit
}

// Hit is one matching book.
type Hit struct {
	ID         string
	Score      float64
	Highlights map[string]string
}

// Search runs params against the index. An empty query yields no hits.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if params.UserID == "" {
		return nil, errors.New("search requires a user id")
	}
	if strings.TrimSpace(params.Query) == "" {
		return &Result{Hits: []Hit{}}, nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("author")
	req.Highlight.AddField("notes")

	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// buildQuery ANDs the user filter and optional keyword filters with a
// disjunction over the text fields. Title matches rank highest.
func buildQuery(p Params) query.Query {
	owner := bleve.NewTermQuery(p.UserID)
	owner.SetField("user_id")
	must := []query.Query{owner}

	text := strings.TrimSpace(p.Query)
	var should []query.Query

	boosts := []struct {
		field string
		boost float64
	}{
		{"title", 3.0},
		{"author", 2.0},
		{"notes", 1.0},
		{"description", 0.8},
	}
	for _, b := range boosts {
		m := bleve.NewMatchQuery(text)
		m.SetField(b.field)
		m.SetBoost(b.boost)
		should = append(should, m)
	}

	// Typo tolerance and prefix matching only for single-word queries.
	if !strings.ContainsAny(text, " \t") {
		lower := strings.ToLower(text)

		fuzzy := bleve.NewFuzzyQuery(lower)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)
		should = append(should, fuzzy)

		if len([]rune(lower)) >= 2 {
			prefix := bleve.NewPrefixQuery(lower)
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			should = append(should, prefix)
		}
	}

	tag := bleve.NewTermQuery(strings.ToLower(text))
	tag.SetField("genres")
	should = append(should, tag)

	must = append(must, bleve.NewDisjunctionQuery(should...))

	if p.Status != "" {
		st := bleve.NewTermQuery(p.Status)
		st.SetField("status")
		must = append(must, st)
	}
	if g := strings.TrimSpace(p.Genre); g != "" {
		gq := bleve.NewTermQuery(strings.ToLower(g))
		gq.SetField("genres")
		must = append(must, gq)
	}

	return bleve.NewConjunctionQuery(must...)
}
