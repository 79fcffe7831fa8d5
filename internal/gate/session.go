package gate

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/auth"
	"github.com/portkey-logistics/portkey/internal/domain"
)

// Validator is the hosted auth service as seen by the gate.
type Validator interface {
	ValidateAndRefresh(ctx context.Context, cookieHeader string) (*auth.Session, error)
}

// Session is the per-request view of the caller. It is never cached.
type Session struct {
	Authenticated bool
	Identity      *domain.Identity
	Cookies       []*fiber.Cookie
}

// SessionReader turns a Cookie header into a Session, failing closed.
type SessionReader struct {
	validator Validator
	logger    *zap.Logger
}

// NewSessionReader wraps validator.
func NewSessionReader(validator Validator, logger *zap.Logger) *SessionReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionReader{validator: validator, logger: logger}
}

// Read never returns an error: every validation failure is "no session".
func (r *SessionReader) Read(ctx context.Context, cookieHeader string) Session {
	if cookieHeader == "" {
		return Session{}
	}

	result, err := r.validator.ValidateAndRefresh(ctx, cookieHeader)
	if err != nil {
		if !errors.Is(err, auth.ErrNoSession) {
			r.logger.Debug("session validation failed", zap.Error(err))
		}
		return Session{}
	}
	if result == nil || result.Identity == nil || result.Identity.UserID == "" {
		return Session{}
	}
	return Session{
		Authenticated: true,
		Identity:      result.Identity,
		Cookies:       result.Cookies,
	}
}
