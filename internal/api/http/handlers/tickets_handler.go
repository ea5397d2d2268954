package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dpp-hub/portal-core/internal/activity"
	"github.com/dpp-hub/portal-core/internal/api/dto"
	"github.com/dpp-hub/portal-core/internal/auth"
	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/service"
	"github.com/dpp-hub/portal-core/internal/sla"
	apperrors "github.com/dpp-hub/portal-core/pkg/util/errorutil"
)

// TicketsHandler manages Returns Hub ticket endpoints for staff.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), staff, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), staff.TenantID, parseTicketFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	view, err := h.service.GetTicketView(c.UserContext(), staff.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketDetailResponse{
		TicketSummary: ticketSummary(view.Ticket),
		Description:   view.Ticket.Description,
		SLA:           slaResponse(view.SLA),
		Activity:      activityRows(view.Activity),
	}})
}

// GetSLA GET /api/tickets/:id/sla.
func (h *TicketsHandler) GetSLA(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	state, err := h.service.GetSLA(c.UserContext(), staff.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": slaResponse(state)})
}

// ListActivity GET /api/tickets/:id/activity.
func (h *TicketsHandler) ListActivity(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	rows, err := h.service.ListActivity(c.UserContext(), staff.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityRows(rows)})
}

// UpdateStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	return h.mutate(c, &req, func(staff *domain.StaffMember, id string) (*domain.Ticket, error) {
		return h.service.UpdateStatus(c.UserContext(), staff, id, req.Status, req.Reason)
	})
}

// UpdatePriority PATCH /api/tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	var req dto.UpdatePriorityRequest
	return h.mutate(c, &req, func(staff *domain.StaffMember, id string) (*domain.Ticket, error) {
		return h.service.UpdatePriority(c.UserContext(), staff, id, req.Priority)
	})
}

// Assign POST /api/tickets/:id/assignee.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	return h.mutate(c, &req, func(staff *domain.StaffMember, id string) (*domain.Ticket, error) {
		return h.service.Assign(c.UserContext(), staff, id, req.Assignee)
	})
}

// Unassign DELETE /api/tickets/:id/assignee.
func (h *TicketsHandler) Unassign(c *fiber.Ctx) error {
	return h.mutate(c, nil, func(staff *domain.StaffMember, id string) (*domain.Ticket, error) {
		return h.service.Unassign(c.UserContext(), staff, id)
	})
}

// ChangeCategory PATCH /api/tickets/:id/category.
func (h *TicketsHandler) ChangeCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	return h.mutate(c, &req, func(staff *domain.StaffMember, id string) (*domain.Ticket, error) {
		return h.service.ChangeCategory(c.UserContext(), staff, id, req.Category)
	})
}

// UpdateTags PUT /api/tickets/:id/tags.
func (h *TicketsHandler) UpdateTags(c *fiber.Ctx) error {
	var req dto.TagsRequest
	return h.mutate(c, &req, func(staff *domain.StaffMember, id string) (*domain.Ticket, error) {
		return h.service.UpdateTags(c.UserContext(), staff, id, req.Tags)
	})
}

// Merge POST /api/tickets/:id/merge.
func (h *TicketsHandler) Merge(c *fiber.Ctx) error {
	var req dto.MergeRequest
	return h.mutate(c, &req, func(staff *domain.StaffMember, id string) (*domain.Ticket, error) {
		return h.service.Merge(c.UserContext(), staff, id, req.TargetID)
	})
}

// mutate parses the optional body, runs fn for the authenticated staff
// member and renders the resulting ticket.
func (h *TicketsHandler) mutate(c *fiber.Ctx, body any, fn func(*domain.StaffMember, string) (*domain.Ticket, error)) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	if body != nil {
		if err := c.BodyParser(body); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := fn(staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func staffPrincipal(c *fiber.Ctx) (*domain.StaffMember, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return principal.Staff, nil
}

func parseTicketFilter(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	for _, part := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(part))
	}
	for _, part := range splitList(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(part))
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(val string, fallback int) int {
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:              t.ID,
		ExternalKey:     t.ExternalKey,
		Title:           t.Title,
		Status:          t.Status,
		Priority:        t.Priority,
		Category:        t.Category,
		Tags:            t.Tags,
		Assignee:        t.AssigneeName,
		SLAResolutionAt: t.SLAResolutionAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		ClosedAt:        t.ClosedAt,
	}
}

func slaResponse(state sla.State) dto.SLAResponse {
	resp := dto.SLAResponse{
		Defined:   state.Defined,
		Status:    state.Status,
		Progress:  state.Progress,
		Remaining: state.Formatted(),
		IsOverdue: state.IsOverdue,
		IsAtRisk:  state.IsAtRisk,
		Label:     state.Label(),
	}
	if state.Defined {
		deadline := state.Deadline
		resp.Deadline = &deadline
	}
	return resp
}

func activityRows(rows []activity.Row) []dto.ActivityRowResponse {
	out := make([]dto.ActivityRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.ActivityRowResponse{
			ID:           row.ID,
			Icon:         row.Icon,
			Key:          row.Key,
			Params:       row.Params,
			Text:         row.Text,
			Actor:        row.Actor,
			Timestamp:    row.Timestamp,
			Relative:     row.Relative,
			IsLatest:     row.IsLatest,
			HasConnector: row.HasConnector,
		})
	}
	return out
}
