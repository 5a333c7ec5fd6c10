package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

func testKey(b byte) []byte {
	key := make([]byte, keyBytesSize)
	for i := range key {
		key[i] = b
	}
	return key
}

func newTestTokenService(t *testing.T, now time.Time) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testKey(7), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)
	svc.SetClock(func() time.Time { return now })
	return svc
}

func TestAccessToken_RoundTrip(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, now)
	user := &domain.User{ID: "user-1", Email: "ann@example.com"}

	token, err := svc.GenerateAccessToken(user, "sess-1")
	require.NoError(t, err)
	assert.Contains(t, token, "v4.local.")

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, now.Add(15*time.Minute), claims.Expiration, time.Second)
}

func TestAccessToken_Expired(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, now)

	token, err := svc.GenerateAccessToken(&domain.User{ID: "user-1"}, "sess-1")
	require.NoError(t, err)

	svc.SetClock(func() time.Time { return now.Add(16 * time.Minute) })
	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestAccessToken_WrongKeyOrGarbage(t *testing.T) {
	now := time.Now()
	svc := newTestTokenService(t, now)
	token, err := svc.GenerateAccessToken(&domain.User{ID: "user-1"}, "sess-1")
	require.NoError(t, err)

	other, err := NewTokenService(testKey(9), time.Minute, time.Hour)
	require.NoError(t, err)
	_, err = other.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_KeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestRefreshTokens(t *testing.T) {
	a, err := GenerateRefreshToken()
	require.NoError(t, err)
	b, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, HashRefreshToken(a), 64)
	assert.Equal(t, HashRefreshToken(a), HashRefreshToken(a))
	assert.NotEqual(t, HashRefreshToken(a), HashRefreshToken(b))
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyBytesSize)

	info, err := os.Stat(filepath.Join(dir, KeyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second, "key is stable across restarts")
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFileName), []byte("abc"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
