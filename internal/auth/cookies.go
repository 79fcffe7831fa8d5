package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/portkey-logistics/portkey/internal/config"
	"github.com/portkey-logistics/portkey/internal/domain"
)

// CookieSettings names the session cookies and the attributes they are issued with.
type CookieSettings struct {
	AccessName    string
	RefreshName   string
	Domain        string
	Path          string
	Secure        bool
	SameSite      string
	RefreshMaxAge int
}

// NewCookieSettings derives cookie settings from configuration.
func NewCookieSettings(cfg config.SupabaseConfig) CookieSettings {
	return CookieSettings{
		AccessName:    cfg.AccessCookie,
		RefreshName:   cfg.RefreshCookie,
		Domain:        cfg.CookieDomain,
		Path:          cfg.CookiePath,
		Secure:        cfg.CookieSecure,
		SameSite:      cfg.CookieSameSite,
		RefreshMaxAge: cfg.RefreshCookieMaxAge,
	}
}

// SessionTokens extracts the access and refresh tokens from a raw Cookie header.
func (s CookieSettings) SessionTokens(cookieHeader string) (access, refresh string) {
	if cookieHeader == "" {
		return "", ""
	}
	req := http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
	if c, err := req.Cookie(s.AccessName); err == nil {
		access = c.Value
	}
	if c, err := req.Cookie(s.RefreshName); err == nil {
		refresh = c.Value
	}
	return access, refresh
}

// Issue returns the cookies that carry pair to the browser.
func (s CookieSettings) Issue(pair *domain.TokenPair) []*fiber.Cookie {
	access := s.base(s.AccessName, pair.AccessToken)
	if !pair.ExpiresAt.IsZero() {
		access.Expires = pair.ExpiresAt
	}
	refresh := s.base(s.RefreshName, pair.RefreshToken)
	refresh.MaxAge = s.RefreshMaxAge
	return []*fiber.Cookie{access, refresh}
}

// Clear returns expired cookies that remove the session from the browser.
func (s CookieSettings) Clear() []*fiber.Cookie {
	expired := time.Unix(0, 0)
	access := s.base(s.AccessName, "")
	access.Expires = expired
	access.MaxAge = -1
	refresh := s.base(s.RefreshName, "")
	refresh.Expires = expired
	refresh.MaxAge = -1
	return []*fiber.Cookie{access, refresh}
}

func (s CookieSettings) base(name, value string) *fiber.Cookie {
	path := s.Path
	if path == "" {
		path = "/"
	}
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   s.Domain,
		Secure:   s.Secure,
		HTTPOnly: true,
		SameSite: s.SameSite,
	}
}
