package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

var _ store.SearchIndexer = (*Index)(nil)

// Index wraps a Bleve index of book documents.
//
// All methods are safe for concurrent use. Rebuild takes the write lock and
// blocks everything else until the fresh index is in place.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	Path   string       // index directory, e.g. <data>/search.bleve
	Logger *slog.Logger // discard if nil
}

// Open opens the index at opts.Path, creating it if missing. An index
// written with another mapping version, or one that fails to open, is
// removed and recreated empty; callers reindex when DocumentCount is 0.
func Open(opts Options) (*Index, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	versionPath := opts.Path + ".version"

	var idx bleve.Index
	if _, err := os.Stat(opts.Path); err == nil {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			log.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
		case string(existing) != mappingVersion:
			log.Info("search index mapping version changed, will rebuild",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
		default:
			idx, err = bleve.Open(opts.Path)
			if err != nil {
				log.Warn("failed to open existing index, will recreate", "path", opts.Path, "error", err)
				idx = nil
			}
		}
	}

	if idx == nil {
		var err error
		if idx, err = create(opts.Path, versionPath); err != nil {
			return nil, err
		}
		log.Info("created new search index", "path", opts.Path, "mapping_version", mappingVersion)
	} else {
		log.Info("opened existing search index", "path", opts.Path)
	}

	return &Index{index: idx, path: opts.Path, logger: log}, nil
}

func create(path, versionPath string) (bleve.Index, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove old index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create index parent: %w", err)
	}

	idx, err := bleve.New(path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o600); err != nil {
		idx.Close()
		return nil, fmt.Errorf("write index version: %w", err)
	}
	return idx, nil
}

// Close closes the index and releases resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces the document for book.
func (s *Index) IndexBook(_ context.Context, book *domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(book.ID, NewBookDocument(book).ToMap())
}

// DeleteBook removes the document for bookID. Missing ids are ignored.
func (s *Index) DeleteBook(_ context.Context, bookID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(bookID)
}

// IndexBooks indexes books in batches of 500.
func (s *Index) IndexBooks(ctx context.Context, books []*domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(books); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(i+batchSize, len(books))
		batch := s.index.NewBatch()
		for _, b := range books[i:end] {
			if err := batch.Index(b.ID, NewBookDocument(b).ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", b.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DocumentCount returns the number of indexed books.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document by recreating the index.
func (s *Index) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	idx, err := create(s.path, s.path+".version")
	if err != nil {
		return err
	}
	s.index = idx
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
