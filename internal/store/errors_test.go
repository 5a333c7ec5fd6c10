package store

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesWrappedVariants(t *testing.T) {
	cause := errors.New("database is locked")
	err := fmt.Errorf("create book: %w", ErrUnavailable.WithCause(cause))

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "create book: database unavailable: database is locked", err.Error())
}

func TestError_HTTPCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ErrNotFound.HTTPCode())
	assert.Equal(t, http.StatusBadRequest, ErrEmailExists.HTTPCode())
	assert.Equal(t, http.StatusServiceUnavailable, ErrUnavailable.HTTPCode())
}
