package gate

import (
	"context"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dpp-hub/portal-core/internal/domainresolver"
	"github.com/dpp-hub/portal-core/internal/sessioncache"
	apperrors "github.com/dpp-hub/portal-core/pkg/util/errorutil"
)

const stateKey = "portal_domain_state"

// Resolver resolves a hostname against the session cache.
type Resolver interface {
	Resolve(ctx context.Context, cache sessioncache.Store, hostname string) (domainresolver.State, bool)
}

var notFoundPage = template.Must(template.New("domain-not-found").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Domain not found</title></head>
<body>
<h1>Domain not found</h1>
<p>The domain <strong>{{.}}</strong> is not connected to any portal.</p>
</body>
</html>
`))

// Domain resolves the request host before any tenant facing handler runs.
// Platform hosts pass through untouched. Custom domains that resolve carry
// their state in the request; the rest get a not found response naming the
// host exactly as requested.
func Domain(resolver Resolver, sessions sessioncache.Provider, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		raw := c.Hostname()
		state, ok := resolver.Resolve(c.UserContext(), sessions.Session(SessionID(c)), raw)
		if !ok {
			logger.Debug("domain resolution abandoned", zap.String("host", raw))
			return fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
		}
		if state.Failed() {
			if state.Error != nil && *state.Error == domainresolver.ErrResolution {
				logger.Warn("domain resolution failed", zap.String("host", raw))
			}
			return domainNotFound(c, raw)
		}
		c.Locals(stateKey, state)
		return c.Next()
	}
}

func domainNotFound(c *fiber.Ctx, host string) error {
	if strings.HasPrefix(c.Path(), "/api/") || c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return apperrors.NewDomainNotFound(host)
	}
	var page strings.Builder
	if err := notFoundPage.Execute(&page, host); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusNotFound).SendString(page.String())
}

// State returns the domain state bound by Domain. Requests that did not pass
// through the gate report a platform host.
func State(c *fiber.Ctx) domainresolver.State {
	state, _ := c.Locals(stateKey).(domainresolver.State)
	return state
}

// TenantID reports the tenant owning the request host, if the host is a
// resolved custom domain.
func TenantID(c *fiber.Ctx) (string, bool) {
	state := State(c)
	if !state.IsCustomDomain || state.Resolution == nil {
		return "", false
	}
	return state.Resolution.TenantID, true
}
