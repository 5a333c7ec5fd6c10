package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/catalog"
	"github.com/bookshelfapp/bookshelf-server/internal/catalog/googlebooks"
	"github.com/bookshelfapp/bookshelf-server/internal/catalog/openlibrary"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

// CatalogClientHandle wraps the catalog client with shutdown capability.
type CatalogClientHandle struct {
	*catalog.Client
}

// Shutdown implements do.Shutdownable.
func (h *CatalogClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideCatalogClient provides the OpenLibrary client, with Google Books
// as the ISBN fallback when enabled.
func ProvideCatalogClient(i do.Injector) (*CatalogClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	primary := openlibrary.New(openlibrary.Config{
		BaseURL:   cfg.Catalog.OpenLibraryURL,
		CoversURL: cfg.Catalog.CoversURL,
		Timeout:   cfg.Catalog.Timeout,
	}, log.Logger)

	var fallback catalog.Provider
	if cfg.Catalog.GoogleBooksEnabled {
		fallback = googlebooks.New(googlebooks.Config{
			BaseURL: cfg.Catalog.GoogleBooksURL,
			Timeout: cfg.Catalog.Timeout,
		}, log.Logger)
	}

	log.Info("Catalog client initialized",
		"openlibrary", cfg.Catalog.OpenLibraryURL,
		"google_books_fallback", cfg.Catalog.GoogleBooksEnabled,
	)

	return &CatalogClientHandle{Client: catalog.NewClient(primary, fallback, log.Logger)}, nil
}
