// Package service implements the Bookshelf business rules on top of the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	store          store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	validator      *validation.Validator
	now            Clock
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		validator:      validation.New(),
		now:            systemClock,
		logger:         logger,
	}
}

// RegisterRequest contains the data for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// LoginRequest contains login credentials and the client they come from.
type LoginRequest struct {
	Email    string     `json:"email" validate:"required,email,max=254"`
	Password string     `json:"password" validate:"required,max=1024"`
	Client   ClientInfo `json:"-"`
}

// RefreshRequest carries a refresh token to exchange.
type RefreshRequest struct {
	RefreshToken string     `json:"refreshToken" validate:"required,max=256"`
	Client       ClientInfo `json:"-"`
}

// UserInfo is the public view of a user.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserInfo strips credentials from user.
func NewUserInfo(user *domain.User) UserInfo {
	return UserInfo{ID: user.ID, Name: user.Name, Email: user.Email}
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	User UserInfo `json:"user"`
}

// AuthResponse contains the tokens of a session and the user it belongs to.
type AuthResponse struct {
	SessionResponse
	User UserInfo `json:"user"`
}

// Register creates a new account. Emails are unique regardless of case.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	user.InitTimestamps(s.now())

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, storeError(err, "create user", "user not found")
	}

	s.logger.Info("user registered", "user_id", userID)

	return &RegisterResponse{User: NewUserInfo(user)}, nil
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same answer as a wrong password so emails cannot be probed.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, storeError(err, "lookup user", "")
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.Client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "session_id", sessionResp.SessionID)

	return &AuthResponse{
		SessionResponse: *sessionResp,
		User:            NewUserInfo(user),
	}, nil
}

// RefreshTokens exchanges a refresh token for a new token pair.
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.Client)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		SessionResponse: *sessionResp,
		User:            NewUserInfo(user),
	}, nil
}

// Logout revokes one of userID's sessions.
func (s *AuthService) Logout(ctx context.Context, userID, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, userID, sessionID)
}

// Me returns the current user.
func (s *AuthService) Me(ctx context.Context, userID string) (*UserInfo, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "get user", "user not found")
	}
	info := NewUserInfo(user)
	return &info, nil
}

// VerifyAccessToken validates a bearer token and returns its claims. The
// token's session must still exist, so logging out revokes it immediately.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, domainerrors.TokenExpired("access token expired")
		}
		return nil, domainerrors.Unauthorized("invalid access token").WithCause(err)
	}

	exists, err := s.sessionService.SessionExists(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domainerrors.Unauthorized("session has been revoked")
	}

	return claims, nil
}

// CreateUser registers an account on behalf of an operator.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password string) (*UserInfo, error) {
	resp, err := s.Register(ctx, RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UserIDByEmail resolves an account for command-line tools.
func (s *AuthService) UserIDByEmail(ctx context.Context, email string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", storeError(err, "lookup user", "user not found")
	}
	return user.ID, nil
}
