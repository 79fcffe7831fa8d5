package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/config"
	"github.com/portkey-logistics/portkey/internal/domain"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

var (
	// ErrNoSession means the request carried no session cookies at all.
	ErrNoSession = errors.New("auth: no session")
	// ErrSessionRejected means the auth service refused the token.
	ErrSessionRejected = errors.New("auth: session rejected")
)

// Session is the outcome of validating one request's session cookies.
// Cookies is non-empty only when the tokens were rotated during validation.
type Session struct {
	Identity *domain.Identity
	Tokens   *domain.TokenPair
	Cookies  []*fiber.Cookie
}

// RefreshObserver is notified whenever a token pair is rotated.
type RefreshObserver interface {
	RecordTokenRefresh(ok bool)
}

// SupabaseClient talks to a Supabase (GoTrue) compatible auth service.
type SupabaseClient struct {
	http          *resty.Client
	tokens        *TokenInspector
	cookies       CookieSettings
	refreshWindow time.Duration
	logger        *zap.Logger
	observer      RefreshObserver
	now           func() time.Time
}

// NewSupabaseClient builds a client from configuration.
func NewSupabaseClient(cfg config.SupabaseConfig, logger *zap.Logger, observer RefreshObserver) *SupabaseClient {
	httpClient := resty.New().
		SetHostURL(cfg.URL).
		SetTimeout(cfg.Timeout()).
		SetHeader("apikey", cfg.AnonKey).
		SetHeader("Accept", "application/json")

	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupabaseClient{
		http:          httpClient,
		tokens:        NewTokenInspector(cfg.JWTSecret),
		cookies:       NewCookieSettings(cfg),
		refreshWindow: cfg.RefreshWindow(),
		logger:        logger,
		observer:      observer,
		now:           time.Now,
	}
}

// Cookies exposes the cookie settings used to read and issue sessions.
func (s *SupabaseClient) Cookies() CookieSettings {
	return s.cookies
}

type userMetadata struct {
	FullName  string `json:"full_name"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type appMetadata struct {
	Role string `json:"role"`
}

type userResponse struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Role         string       `json:"role"`
	UserMetadata userMetadata `json:"user_metadata"`
	AppMetadata  appMetadata  `json:"app_metadata"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	RefreshToken string        `json:"refresh_token"`
	User         *userResponse `json:"user"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"msg"`
}

func (e errorResponse) String() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Message != "":
		return e.Message
	}
	return e.Error
}

// ValidateAndRefresh resolves the identity behind a raw Cookie header.
// A near-expiry access token is rotated first; the rotated pair is returned
// as cookies the caller must forward to the client. Exactly one round trip
// to the auth service is made per call.
func (s *SupabaseClient) ValidateAndRefresh(ctx context.Context, cookieHeader string) (*Session, error) {
	access, refresh := s.cookies.SessionTokens(cookieHeader)
	if access == "" && refresh == "" {
		return nil, ErrNoSession
	}

	if access != "" && !s.refreshDue(access) {
		identity, err := s.GetUser(ctx, access)
		if err != nil {
			return nil, err
		}
		return &Session{Identity: identity}, nil
	}

	if refresh == "" {
		return nil, fmt.Errorf("%w: access token expired and no refresh token", ErrSessionRejected)
	}

	identity, pair, err := s.refresh(ctx, refresh)
	if s.observer != nil {
		s.observer.RecordTokenRefresh(err == nil)
	}
	if err != nil {
		return nil, err
	}
	if identity == nil {
		if identity, err = s.GetUser(ctx, pair.AccessToken); err != nil {
			return nil, err
		}
	}
	return &Session{Identity: identity, Tokens: pair, Cookies: s.cookies.Issue(pair)}, nil
}

// GetUser verifies accessToken with the auth service and returns its owner.
func (s *SupabaseClient) GetUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	var (
		user   userResponse
		apiErr errorResponse
	)
	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&user).
		SetError(&apiErr).
		Get("/auth/v1/user")
	if err != nil {
		return nil, apperrors.NewNetworkError("auth service", err)
	}
	if resp.IsError() {
		return nil, s.statusError(resp.StatusCode(), apiErr)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: empty user", ErrSessionRejected)
	}
	return user.identity(), nil
}

// ExchangeSession validates a token pair handed over by a browser sign-in
// and returns the cookies that establish it.
func (s *SupabaseClient) ExchangeSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	identity, err := s.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	pair := &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken, TokenType: "bearer"}
	if claims, err := s.tokens.Inspect(accessToken); err == nil && claims.ExpiresAt != nil {
		pair.ExpiresAt = claims.ExpiresAt.Time
	}
	return &Session{Identity: identity, Tokens: pair, Cookies: s.cookies.Issue(pair)}, nil
}

// SignOut revokes the session server-side. Failures are logged, not returned:
// the caller clears cookies regardless.
func (s *SupabaseClient) SignOut(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/auth/v1/logout")
	if err != nil {
		s.logger.Warn("auth sign out failed", zap.Error(err))
		return
	}
	if resp.IsError() {
		s.logger.Debug("auth sign out rejected", zap.Int("status", resp.StatusCode()))
	}
}

func (s *SupabaseClient) refreshDue(access string) bool {
	claims, err := s.tokens.Inspect(access)
	if err != nil {
		s.logger.Debug("access token unreadable; refreshing", zap.Error(err))
		return true
	}
	return claims.ExpiresWithin(s.refreshWindow, s.now())
}

func (s *SupabaseClient) refresh(ctx context.Context, refreshToken string) (*domain.Identity, *domain.TokenPair, error) {
	var (
		tokens tokenResponse
		apiErr errorResponse
	)
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&tokens).
		SetError(&apiErr).
		Post("/auth/v1/token")
	if err != nil {
		return nil, nil, apperrors.NewNetworkError("auth service", err)
	}
	if resp.IsError() {
		return nil, nil, s.statusError(resp.StatusCode(), apiErr)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return nil, nil, fmt.Errorf("%w: refresh returned no tokens", ErrSessionRejected)
	}

	pair := &domain.TokenPair{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
	}
	switch {
	case tokens.ExpiresAt > 0:
		pair.ExpiresAt = time.Unix(tokens.ExpiresAt, 0)
	case tokens.ExpiresIn > 0:
		pair.ExpiresAt = s.now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	}

	var identity *domain.Identity
	if tokens.User != nil && tokens.User.ID != "" {
		identity = tokens.User.identity()
	}
	return identity, pair, nil
}

func (s *SupabaseClient) statusError(status int, apiErr errorResponse) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		status == http.StatusBadRequest, status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrSessionRejected, apiErr)
	case status >= http.StatusInternalServerError:
		return apperrors.NewNetworkError("auth service", fmt.Errorf("status %d: %s", status, apiErr))
	}
	return fmt.Errorf("auth: unexpected status %d: %s", status, apiErr)
}

func (u *userResponse) identity() *domain.Identity {
	name := u.UserMetadata.FullName
	if name == "" {
		name = u.UserMetadata.Name
	}
	role := u.AppMetadata.Role
	if role == "" {
		role = u.Role
	}
	return &domain.Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      role,
		FullName:  name,
		AvatarURL: u.UserMetadata.AvatarURL,
	}
}
