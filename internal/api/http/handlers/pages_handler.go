package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/portkey-logistics/portkey/internal/api/dto"
	"github.com/portkey-logistics/portkey/internal/gate"
)

// PagesHandler renders page descriptors behind the access gate.
type PagesHandler struct{}

// NewPagesHandler constructs handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Render answers any page path the gate let through.
func (h *PagesHandler) Render(c *fiber.Ctx) error {
	path := c.Path()
	resp := dto.PageResponse{Page: pageName(path), Path: path}
	if session, ok := gate.SessionFromContext(c); ok {
		resp.Authenticated = true
		resp.UserID = session.Identity.UserID
	}
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.JSON(resp)
}

func pageName(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "home"
	}
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}
