package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
)

// getFixturePath returns the path to the shared envelope fixtures.
// Client tests embed the same JSON to verify parsing compatibility.
func getFixturePath(t *testing.T) string {
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get caller info")

	// internal/api -> repository root.
	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(root, "testdata", "envelope")
}

func readFixture(t *testing.T, name string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(getFixturePath(t), name))
	require.NoError(t, err, "contract tests require the shared fixtures")

	var fixture map[string]any
	require.NoError(t, json.Unmarshal(raw, &fixture))
	return fixture
}

func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

// assertSameKeys checks that got has exactly the top-level fields of want.
func assertSameKeys(t *testing.T, want, got map[string]any) {
	t.Helper()
	for key := range want {
		assert.Contains(t, got, key, "missing field %q", key)
	}
	for key := range got {
		assert.Contains(t, want, key, "unexpected field %q", key)
	}
}

func TestEnvelopeContract_Success(t *testing.T) {
	expected := readFixture(t, "success.json")

	result, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "book_V1StGXR8_Z5jdHi6B", "title": "Dune"})
	require.NoError(t, err)

	got := toMap(t, result)
	assertSameKeys(t, expected, got)
	assert.Equal(t, expected, got)
}

func TestEnvelopeContract_SuccessNullData(t *testing.T) {
	expected := readFixture(t, "success_null_data.json")

	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)

	assert.Equal(t, expected, toMap(t, result))
}

func TestEnvelopeContract_SimpleError(t *testing.T) {
	expected := readFixture(t, "error_simple.json")

	t.Run("api error without code", func(t *testing.T) {
		result, err := EnvelopeTransformer(nil, "404", &APIError{status: http.StatusNotFound, Message: "route not found"})
		require.NoError(t, err)
		assert.Equal(t, expected, toMap(t, result))
	})

	t.Run("router fallback", func(t *testing.T) {
		ts := newTestServer(t)
		resp := ts.api.Get("/definitely/not/here")

		var got map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, expected, got)
	})

	t.Run("response package", func(t *testing.T) {
		got := toMap(t, response.Envelope{Version: response.Version, Error: "route not found"})
		assert.Equal(t, expected, got)
	})
}

func TestEnvelopeContract_DetailedError(t *testing.T) {
	expected := readFixture(t, "error_detailed.json")

	result, err := EnvelopeTransformer(nil, "400", &APIError{
		status:  http.StatusBadRequest,
		Code:    "VALIDATION",
		Message: "title is required",
		Details: map[string]string{"title": "is required"},
	})
	require.NoError(t, err)

	assert.Equal(t, expected, toMap(t, result))
}

// The version field must be named exactly "v"; clients break silently otherwise.
func TestEnvelopeContract_VersionFieldName(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)

	got := toMap(t, result)
	assert.Contains(t, got, "v")
	assert.NotContains(t, got, "version")
	assert.NotContains(t, got, "Version")
	assert.Equal(t, response.Version, EnvelopeVersion)
}
