// Package gate holds the request middlewares that bind a request to a portal
// session and to the tenant owning the request host.
package gate

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dpp-hub/portal-core/internal/config"
)

const sessionKey = "portal_session_id"

// Session ensures every request carries a session id cookie. Unknown or
// malformed ids are replaced with a fresh one.
func Session(cfg config.SessionConfig) fiber.Handler {
	name := cfg.CookieName
	if name == "" {
		name = "portal_session"
	}
	ttl := cfg.TTL()

	return func(c *fiber.Ctx) error {
		id := c.Cookies(name)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(ttl),
				HTTPOnly: true,
				Secure:   cfg.Secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(sessionKey, id)
		return c.Next()
	}
}

// SessionID returns the session id bound by Session.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionKey).(string)
	return id
}
