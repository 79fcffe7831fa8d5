package gate

import (
	"path"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const identityKey = "gate_session"

// Observer records gate decisions.
type Observer interface {
	RecordGateDecision(classification, outcome string)
}

// Gate decides, for every request, whether to pass it through or redirect.
type Gate struct {
	reader   *SessionReader
	engine   *Engine
	logger   *zap.Logger
	observer Observer
}

// New builds a gate. observer may be nil.
func New(reader *SessionReader, engine *Engine, logger *zap.Logger, observer Observer) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{reader: reader, engine: engine, logger: logger, observer: observer}
}

// Engine exposes the decision engine, used by sign-in to resolve redirectTo.
func (g *Gate) Engine() *Engine {
	return g.engine
}

// Handle is the fiber middleware.
func (g *Gate) Handle(c *fiber.Ctx) error {
	reqPath := routingPath(c.Path())
	session := g.reader.Read(c.UserContext(), c.Get(fiber.HeaderCookie))
	decision := g.engine.Decide(session.Authenticated, reqPath, c.Query(g.engine.RedirectParam()))

	propagate(c, session.Cookies)

	if g.observer != nil {
		g.observer.RecordGateDecision(decision.Classification.String(), decision.Outcome.String())
	}
	g.logger.Debug("gate decision",
		zap.String("path", reqPath),
		zap.Bool("authenticated", session.Authenticated),
		zap.String("classification", decision.Classification.String()),
		zap.String("outcome", decision.Outcome.String()),
		zap.Bool("refreshed", len(session.Cookies) > 0))

	if decision.Outcome != Allow {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Redirect(decision.Location, fiber.StatusFound)
	}

	if session.Authenticated {
		c.Locals(identityKey, &session)
	}
	return c.Next()
}

// routingPath resolves dot segments and repeated slashes so "/x/../dashboard"
// and "//dashboard" are classified like "/dashboard". Case is handled by
// RoutePolicy.Classify.
func routingPath(raw string) string {
	return path.Clean("/" + raw)
}

// SessionFromContext returns the session the gate established for this request.
func SessionFromContext(c *fiber.Ctx) (*Session, bool) {
	session, ok := c.Locals(identityKey).(*Session)
	return session, ok && session != nil
}
