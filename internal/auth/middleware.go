package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/portkey-logistics/portkey/internal/domain"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Identity *domain.Identity
	Profile  *domain.Profile
}

// UserID returns the caller's auth user id.
func (p *Principal) UserID() string {
	return p.Identity.UserID
}

// Role returns the synced profile role, defaulting to client.
func (p *Principal) Role() domain.ProfileRole {
	if p.Profile == nil || !p.Profile.Role.Valid() {
		return domain.RoleClient
	}
	return p.Profile.Role
}

// UserVerifier resolves an access token to its owner.
type UserVerifier interface {
	GetUser(ctx context.Context, accessToken string) (*domain.Identity, error)
}

// ProfileLookup loads the application profile for an auth user, creating it
// on first sight.
type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	SyncIdentity(ctx context.Context, identity *domain.Identity) (*domain.Profile, error)
}

// AuthMiddleware validates bearer tokens (or the session cookie) and loads principals.
type AuthMiddleware struct {
	verifier UserVerifier
	profiles ProfileLookup
	cookies  CookieSettings
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier UserVerifier, profiles ProfileLookup, cookies CookieSettings) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, profiles: profiles, cookies: cookies}
}

// Handle enforces authentication for API routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := m.accessToken(c)
	if err != nil {
		return err
	}

	identity, err := m.verifier.GetUser(c.UserContext(), token)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNetwork {
			return err
		}
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{Identity: identity}
	profile, err := m.profiles.GetByID(c.UserContext(), identity.UserID)
	switch {
	case err == nil:
		principal.Profile = profile
	case errors.Is(err, pgx.ErrNoRows):
		// First request after sign-up. A failed sync leaves the caller a
		// profile-less client; writes that need the row then fail with 422.
		if synced, syncErr := m.profiles.SyncIdentity(c.UserContext(), identity); syncErr == nil {
			principal.Profile = synced
		}
	default:
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

func (m *AuthMiddleware) accessToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", apperrors.NewUnauthorized("invalid authorization header")
		}
		return parts[1], nil
	}
	if token := c.Cookies(m.cookies.AccessName); token != "" {
		return token, nil
	}
	return "", apperrors.NewUnauthorized("missing authorization header")
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil && principal.Identity != nil
}
