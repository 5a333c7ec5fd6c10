package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]string{"id": "123"}, logger.Discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, float64(Version), body["v"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"id": "123"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	NotFound(w, "route not found", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(Version), body["v"])
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "route not found", body["error"])
	assert.NotContains(t, body, "data")
}

func TestStatusCodeBoundary(t *testing.T) {
	tests := []struct {
		status      int
		wantSuccess bool
	}{
		{200, true},
		{201, true},
		{399, true},
		{400, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, tt.status, nil, nil)
			assert.Equal(t, tt.wantSuccess, decode(t, w)["success"])
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Run("store error keeps its status", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleError(w, fmt.Errorf("get book: %w", store.ErrNotFound), logger.Discard())

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, store.ErrNotFound.Message, decode(t, w)["error"])
	})

	t.Run("unknown error is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleError(w, errors.New("disk on fire"), logger.Discard())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decode(t, w)["error"])
	})
}
