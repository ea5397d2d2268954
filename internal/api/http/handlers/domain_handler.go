package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dpp-hub/portal-core/internal/api/http/gate"
)

// DomainHandler exposes the domain state of the current request host.
type DomainHandler struct{}

// NewDomainHandler constructs handler.
func NewDomainHandler() *DomainHandler {
	return &DomainHandler{}
}

// Current handles GET /api/domain.
func (h *DomainHandler) Current(c *fiber.Ctx) error {
	state := gate.State(c)
	body := fiber.Map{"data": state}
	if state.Resolution != nil {
		body["portal_path"] = state.Resolution.PortalPath()
	}
	return c.JSON(body)
}

// Entry handles GET /. A resolved custom domain lands on its tenant portal.
func (h *DomainHandler) Entry(c *fiber.Ctx) error {
	state := gate.State(c)
	if state.IsCustomDomain && state.Resolution != nil {
		return c.Redirect(state.Resolution.PortalPath(), fiber.StatusFound)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
