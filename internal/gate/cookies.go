package gate

import "github.com/gofiber/fiber/v2"

// propagate attaches refreshed cookies to the outgoing response and rewrites
// them on the inbound request so downstream handlers read the new tokens.
// It runs before the outcome is applied, so redirects carry them too.
func propagate(c *fiber.Ctx, cookies []*fiber.Cookie) {
	for _, cookie := range cookies {
		if cookie == nil {
			continue
		}
		c.Cookie(cookie)
		c.Request().Header.SetCookie(cookie.Name, cookie.Value)
	}
}
