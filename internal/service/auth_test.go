package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

type authFixture struct {
	store    *sqlite.Store
	tokens   *auth.TokenService
	sessions *SessionService
	auth     *AuthService
}

func setupAuthTest(t *testing.T) *authFixture {
	t.Helper()

	st := newTestStore(t)
	tokens := newTestTokenService(t)
	sessions := NewSessionService(st, tokens, logger.Discard())
	sessions.now = fixedClock(testNow)
	authSvc := NewAuthService(st, tokens, sessions, logger.Discard())
	authSvc.now = fixedClock(testNow)

	return &authFixture{store: st, tokens: tokens, sessions: sessions, auth: authSvc}
}

func (f *authFixture) register(t *testing.T, name, email string) UserInfo {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret-password",
	})
	require.NoError(t, err)
	return resp.User
}

func (f *authFixture) login(t *testing.T, email string) *AuthResponse {
	t.Helper()
	resp, err := f.auth.Login(context.Background(), LoginRequest{
		Email:    email,
		Password: "secret-password",
		Client:   ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test-agent"},
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_Register_Success(t *testing.T) {
	f := setupAuthTest(t)

	user := f.register(t, "  Anna  ", "anna@example.com")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Anna", user.Name)
	assert.Equal(t, "anna@example.com", user.Email)

	stored, err := f.store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", stored.PasswordHash)
	assert.True(t, auth.VerifyPassword(stored.PasswordHash, "secret-password"))
	assert.True(t, stored.CreatedAt.Equal(testNow))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := setupAuthTest(t)
	f.register(t, "Anna", "anna@example.com")

	_, err := f.auth.Register(context.Background(), RegisterRequest{
		Name:     "Other",
		Email:    "ANNA@example.com",
		Password: "another-password",
	})

	domainErr := requireCode(t, err, domainerrors.CodeAlreadyExists)
	assert.Equal(t, "a user with this email already exists", domainErr.Message)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name      string
		req       RegisterRequest
		wantField string
	}{
		{"missing name", RegisterRequest{Email: "a@example.com", Password: "secret1"}, "name"},
		{"blank name", RegisterRequest{Name: "   ", Email: "a@example.com", Password: "secret1"}, "name"},
		{"missing email", RegisterRequest{Name: "A", Password: "secret1"}, "email"},
		{"invalid email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}, "email"},
		{"short password", RegisterRequest{Name: "A", Email: "a@example.com", Password: "12345"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAuthTest(t)
			_, err := f.auth.Register(context.Background(), tt.req)

			domainErr := requireCode(t, err, domainerrors.CodeValidation)
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	f := setupAuthTest(t)
	user := f.register(t, "Anna", "anna@example.com")

	resp := f.login(t, "Anna@Example.com")

	assert.Equal(t, user, resp.User)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 900, resp.ExpiresIn)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := f.tokens.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, resp.SessionID, claims.SessionID)

	session, err := f.store.GetSession(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, auth.HashRefreshToken(resp.RefreshToken), session.RefreshTokenHash)
	assert.Equal(t, "10.0.0.1", session.IPAddress)
	assert.Equal(t, "test-agent", session.UserAgent)
	assert.True(t, session.ExpiresAt.Equal(testNow.Add(24*time.Hour)))
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := setupAuthTest(t)
	f.register(t, "Anna", "anna@example.com")

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "anna@example.com", "wrong-password"},
		{"unknown email", "nobody@example.com", "secret-password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Login(context.Background(), LoginRequest{Email: tt.email, Password: tt.password})
			domainErr := requireCode(t, err, domainerrors.CodeInvalidCredentials)
			assert.Equal(t, "invalid email or password", domainErr.Message)
		})
	}
}

func TestAuthService_RefreshTokens_Rotates(t *testing.T) {
	f := setupAuthTest(t)
	f.register(t, "Anna", "anna@example.com")
	first := f.login(t, "anna@example.com")

	second, err := f.auth.RefreshTokens(context.Background(), RefreshRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.auth.RefreshTokens(context.Background(), RefreshRequest{RefreshToken: first.RefreshToken})
	requireCode(t, err, domainerrors.CodeTokenExpired)

	_, err = f.auth.RefreshTokens(context.Background(), RefreshRequest{RefreshToken: second.RefreshToken})
	assert.NoError(t, err)
}

func TestAuthService_RefreshTokens_ExpiredSession(t *testing.T) {
	f := setupAuthTest(t)
	f.register(t, "Anna", "anna@example.com")
	resp := f.login(t, "anna@example.com")

	f.sessions.now = fixedClock(testNow.Add(25 * time.Hour))

	_, err := f.auth.RefreshTokens(context.Background(), RefreshRequest{RefreshToken: resp.RefreshToken})
	requireCode(t, err, domainerrors.CodeTokenExpired)

	exists, err := f.sessions.SessionExists(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.False(t, exists, "expired session is removed")
}

func TestAuthService_RefreshTokens_RequiresToken(t *testing.T) {
	f := setupAuthTest(t)
	_, err := f.auth.RefreshTokens(context.Background(), RefreshRequest{})
	requireCode(t, err, domainerrors.CodeValidation)
}

func TestAuthService_Logout(t *testing.T) {
	f := setupAuthTest(t)
	anna := f.register(t, "Anna", "anna@example.com")
	bob := f.register(t, "Bob", "bob@example.com")
	annaSession := f.login(t, "anna@example.com")

	err := f.auth.Logout(context.Background(), bob.ID, annaSession.SessionID)
	requireCode(t, err, domainerrors.CodeNotFound)

	_, err = f.auth.VerifyAccessToken(context.Background(), annaSession.AccessToken)
	require.NoError(t, err, "someone else's logout must not revoke the session")

	require.NoError(t, f.auth.Logout(context.Background(), anna.ID, annaSession.SessionID))

	_, err = f.auth.VerifyAccessToken(context.Background(), annaSession.AccessToken)
	requireCode(t, err, domainerrors.CodeUnauthorized)

	_, err = f.auth.RefreshTokens(context.Background(), RefreshRequest{RefreshToken: annaSession.RefreshToken})
	requireCode(t, err, domainerrors.CodeTokenExpired)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	f := setupAuthTest(t)
	f.register(t, "Anna", "anna@example.com")
	resp := f.login(t, "anna@example.com")

	claims, err := f.auth.VerifyAccessToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = f.auth.VerifyAccessToken(context.Background(), "v4.local.garbage")
	requireCode(t, err, domainerrors.CodeUnauthorized)

	f.tokens.SetClock(func() time.Time { return time.Now().Add(time.Hour) })
	_, err = f.auth.VerifyAccessToken(context.Background(), resp.AccessToken)
	requireCode(t, err, domainerrors.CodeTokenExpired)
}

func TestAuthService_Me(t *testing.T) {
	f := setupAuthTest(t)
	user := f.register(t, "Anna", "anna@example.com")

	me, err := f.auth.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, *me)

	_, err = f.auth.Me(context.Background(), "user-missing")
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestAuthService_UserIDByEmail(t *testing.T) {
	f := setupAuthTest(t)
	user, err := f.auth.CreateUser(context.Background(), "Anna", "anna@example.com", "secret-password")
	require.NoError(t, err)

	got, err := f.auth.UserIDByEmail(context.Background(), " ANNA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got)
}

func TestSessionService_DeleteExpiredSessions(t *testing.T) {
	f := setupAuthTest(t)
	f.register(t, "Anna", "anna@example.com")
	f.login(t, "anna@example.com")
	f.login(t, "anna@example.com")

	n, err := f.sessions.DeleteExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.sessions.now = fixedClock(testNow.Add(48 * time.Hour))
	n, err = f.sessions.DeleteExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
