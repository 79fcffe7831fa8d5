package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/api/dto"
	"github.com/portkey-logistics/portkey/internal/auth"
	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/gate"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

// SessionProvider establishes and revokes browser sessions with the auth service.
type SessionProvider interface {
	ExchangeSession(ctx context.Context, accessToken, refreshToken string) (*auth.Session, error)
	SignOut(ctx context.Context, accessToken string)
	Cookies() auth.CookieSettings
}

// IdentitySyncer mirrors a verified identity into the profile store.
type IdentitySyncer interface {
	SyncIdentity(ctx context.Context, identity *domain.Identity) (*domain.Profile, error)
}

// SessionHandler turns a client-side sign-in into server-readable cookies.
type SessionHandler struct {
	provider SessionProvider
	profiles IdentitySyncer
	engine   *gate.Engine
	logger   *zap.Logger
}

// NewSessionHandler constructs handler.
func NewSessionHandler(provider SessionProvider, profiles IdentitySyncer, engine *gate.Engine, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{provider: provider, profiles: profiles, engine: engine, logger: logger}
}

// Exchange POST /auth/session.
func (h *SessionHandler) Exchange(c *fiber.Ctx) error {
	// JSON only; cross-site HTML forms cannot send application/json.
	if !c.Is("json") {
		return apperrors.NewDomainError(apperrors.KindValidation, "UNSUPPORTED_MEDIA_TYPE",
			"content type must be application/json", fiber.StatusUnsupportedMediaType, nil)
	}
	var req dto.SessionExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AccessToken) == "" || strings.TrimSpace(req.RefreshToken) == "" {
		return apperrors.NewValidationError("access_token and refresh_token required", nil)
	}

	session, err := h.provider.ExchangeSession(c.UserContext(), req.AccessToken, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrSessionRejected) {
			return apperrors.NewUnauthorized("session rejected")
		}
		return err
	}

	if h.profiles != nil {
		if _, err := h.profiles.SyncIdentity(c.UserContext(), session.Identity); err != nil {
			h.logger.Warn("profile sync on sign-in failed",
				zap.String("user_id", session.Identity.UserID), zap.Error(err))
		}
	}

	for _, cookie := range session.Cookies {
		c.Cookie(cookie)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		UserID:   session.Identity.UserID,
		Redirect: h.engine.Destination(req.RedirectTo),
	}})
}

// Logout POST /auth/logout. Cookies are cleared even when the auth service is unreachable.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	cookies := h.provider.Cookies()
	access, _ := cookies.SessionTokens(c.Get(fiber.HeaderCookie))
	if header := c.Get(fiber.HeaderAuthorization); access == "" && len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		access = strings.TrimSpace(header[7:])
	}
	h.provider.SignOut(c.UserContext(), access)

	for _, cookie := range cookies.Clear() {
		c.Cookie(cookie)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.SessionResponse{Redirect: h.engine.LoginPath()}})
}
