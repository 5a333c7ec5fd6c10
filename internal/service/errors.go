package service

import (
	"errors"
	"fmt"
	"time"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// Messages shared by several services.
const (
	msgBookNotFound = "book not found"
	msgUnavailable  = "service temporarily unavailable"
)

// storeError converts a store sentinel into the domain error the API renders.
// Errors the store does not classify are wrapped with op and end up as 500s.
func storeError(err error, op, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(notFoundMsg).WithCause(err)
	case errors.Is(err, store.ErrEmailExists):
		return domainerrors.AlreadyExists(store.ErrEmailExists.Message).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Conflict("resource already exists").WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(err.Error()).WithCause(err)
	case errors.Is(err, store.ErrUnavailable):
		return domainerrors.Unavailable(msgUnavailable).WithCause(err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
