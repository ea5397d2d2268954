package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dpp-hub/portal-core/internal/activity"
	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/events"
	"github.com/dpp-hub/portal-core/internal/repository"
	"github.com/dpp-hub/portal-core/internal/returns"
	"github.com/dpp-hub/portal-core/internal/sla"
	apperrors "github.com/dpp-hub/portal-core/pkg/util/errorutil"
)

// TicketService coordinates Returns Hub ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	activity   repository.TicketActivityRepository
	dispatcher events.Dispatcher
	policy     sla.Policy
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ActivityRepo repository.TicketActivityRepository
	Dispatcher   events.Dispatcher
	Policy       sla.Policy
	Clock        func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
	Tags        []string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Category   *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketView is everything a ticket page renders.
type TicketView struct {
	Ticket   *domain.Ticket
	SLA      sla.State
	Activity []activity.Row
}

// NewTicketService builds the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		activity:   deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
		policy:     deps.Policy,
		now:        clock,
	}
}

// CreateTicket opens a ticket with a fresh returns number and an SLA
// deadline derived from its priority.
func (s *TicketService) CreateTicket(ctx context.Context, staff *domain.StaffMember, input TicketCreateInput) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	now := s.now()
	ticket := &domain.Ticket{
		TenantID:        staff.TenantID,
		ExternalKey:     returns.NewNumber(now),
		Title:           title,
		Description:     strings.TrimSpace(input.Description),
		Status:          domain.TicketStatusOpen,
		Priority:        priority,
		Category:        strings.TrimSpace(input.Category),
		Tags:            normalizeTags(input.Tags),
		SLAResolutionAt: s.policy.Deadline(priority, now),
		CreatedAt:       now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		Actor:    staffActor(staff),
		Payload: events.TicketCreatedPayload{
			ExternalKey:     ticket.ExternalKey,
			Priority:        ticket.Priority,
			Title:           ticket.Title,
			SLAResolutionAt: ticket.SLAResolutionAt,
		},
	})
	return ticket, nil
}

// ListTickets returns a page of tenant tickets.
func (s *TicketService) ListTickets(ctx context.Context, tenantID string, filter TicketListFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		TenantID:   tenantID,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		Category:   filter.Category,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket loads a ticket within the tenant.
func (s *TicketService) GetTicket(ctx context.Context, tenantID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, tenantID, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// GetTicketView loads a ticket with its SLA state and activity timeline.
func (s *TicketService) GetTicketView(ctx context.Context, tenantID, ticketID string) (*TicketView, error) {
	ticket, err := s.GetTicket(ctx, tenantID, ticketID)
	if err != nil {
		return nil, err
	}
	entries, err := s.activity.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := s.now()
	return &TicketView{
		Ticket:   ticket,
		SLA:      sla.Compute(ticket.CreatedAt, ticket.SLAResolutionAt, now),
		Activity: activity.Timeline(entries, now),
	}, nil
}

// GetSLA computes the SLA state of a ticket.
func (s *TicketService) GetSLA(ctx context.Context, tenantID, ticketID string) (sla.State, error) {
	ticket, err := s.GetTicket(ctx, tenantID, ticketID)
	if err != nil {
		return sla.NoSLA, err
	}
	return sla.Compute(ticket.CreatedAt, ticket.SLAResolutionAt, s.now()), nil
}

// ListActivity renders the activity timeline of a ticket.
func (s *TicketService) ListActivity(ctx context.Context, tenantID, ticketID string) ([]activity.Row, error) {
	ticket, err := s.GetTicket(ctx, tenantID, ticketID)
	if err != nil {
		return nil, err
	}
	entries, err := s.activity.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return activity.Timeline(entries, s.now()), nil
}

// UpdateStatus moves a ticket through its lifecycle. Closing with a reason
// records closed_with_reason; leaving the closed state records reopened.
func (s *TicketService) UpdateStatus(ctx context.Context, staff *domain.StaffMember, ticketID string, newStatus domain.TicketStatus, reason string) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	ticket, err := s.loadForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	oldStatus := ticket.Status
	if !isValidTransition(oldStatus, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{"from": string(oldStatus), "to": string(newStatus)})
	}

	if newStatus == domain.TicketStatusClosed {
		now := s.now()
		ticket.ClosedAt = &now
	} else {
		ticket.ClosedAt = nil
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	reason = strings.TrimSpace(reason)
	switch {
	case oldStatus == domain.TicketStatusClosed:
		err = s.recordActivity(ctx, staff, ticket, domain.ActionReopened, map[string]any{"to": string(newStatus)})
	case newStatus == domain.TicketStatusClosed && reason != "":
		err = s.recordActivity(ctx, staff, ticket, domain.ActionClosedWithReason, map[string]any{"from": string(oldStatus), "reason": reason})
	default:
		err = s.recordActivity(ctx, staff, ticket, domain.ActionStatusChanged, map[string]any{"from": string(oldStatus), "to": string(newStatus)})
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdatePriority changes ticket priority. The SLA deadline set at creation
// is left as is.
func (s *TicketService) UpdatePriority(ctx context.Context, staff *domain.StaffMember, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !newPriority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.loadForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	oldPriority := ticket.Priority
	if oldPriority == newPriority {
		return ticket, nil
	}
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordActivity(ctx, staff, ticket, domain.ActionPriorityChanged, map[string]any{"from": string(oldPriority), "to": string(newPriority)}); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Assign hands a ticket to the named agent.
func (s *TicketService) Assign(ctx context.Context, staff *domain.StaffMember, ticketID, assignee string) (*domain.Ticket, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, apperrors.NewValidationError("assignee required", nil)
	}
	ticket, err := s.loadForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.AssigneeName = &assignee
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordActivity(ctx, staff, ticket, domain.ActionAssigned, map[string]any{"name": assignee}); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Unassign clears the ticket assignee.
func (s *TicketService) Unassign(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssigneeName == nil {
		return ticket, nil
	}
	previous := *ticket.AssigneeName
	ticket.AssigneeName = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordActivity(ctx, staff, ticket, domain.ActionUnassigned, map[string]any{"name": previous}); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ChangeCategory recategorizes a ticket.
func (s *TicketService) ChangeCategory(ctx context.Context, staff *domain.StaffMember, ticketID, category string) (*domain.Ticket, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.NewValidationError("category required", nil)
	}
	ticket, err := s.loadForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Category == category {
		return ticket, nil
	}
	previous := ticket.Category
	ticket.Category = category
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordActivity(ctx, staff, ticket, domain.ActionCategoryChanged, map[string]any{"from": previous, "category": category}); err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateTags replaces the ticket tags.
func (s *TicketService) UpdateTags(ctx context.Context, staff *domain.StaffMember, ticketID string, tags []string) (*domain.Ticket, error) {
	ticket, err := s.loadForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	previous := ticket.Tags
	ticket.Tags = normalizeTags(tags)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordActivity(ctx, staff, ticket, domain.ActionTagsChanged, map[string]any{"from": previous, "to": ticket.Tags}); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Merge folds source into target. The source ticket is closed and both
// tickets record the merge.
func (s *TicketService) Merge(ctx context.Context, staff *domain.StaffMember, sourceID, targetID string) (*domain.Ticket, error) {
	if sourceID == targetID {
		return nil, apperrors.NewValidationError("cannot merge a ticket into itself", nil)
	}
	source, err := s.loadForStaff(ctx, staff, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.loadForStaff(ctx, staff, targetID)
	if err != nil {
		return nil, err
	}
	if source.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("source ticket already closed", map[string]any{"ticket_id": sourceID})
	}

	now := s.now()
	source.Status = domain.TicketStatusClosed
	source.ClosedAt = &now
	if err := s.tickets.Update(ctx, source); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordActivity(ctx, staff, source, domain.ActionMerged, map[string]any{"into": target.ExternalKey}); err != nil {
		return nil, err
	}
	if err := s.recordActivity(ctx, staff, target, domain.ActionMerged, map[string]any{"from": source.ExternalKey}); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *TicketService) loadForStaff(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return s.GetTicket(ctx, staff.TenantID, ticketID)
}

func (s *TicketService) recordActivity(ctx context.Context, staff *domain.StaffMember, ticket *domain.Ticket, action domain.ActivityAction, details map[string]any) error {
	entry := &domain.ActivityLogEntry{
		TicketID:  ticket.ID,
		Action:    action,
		Details:   details,
		ActorName: &staff.Name,
	}
	if err := s.activity.Create(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketActivityRecorded,
		TenantID: ticket.TenantID,
		TicketID: ticket.ID,
		Actor:    staffActor(staff),
		Payload: events.TicketActivityPayload{
			EntryID: entry.ID,
			Action:  entry.Action,
			Details: entry.Details,
		},
	})
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func staffActor(staff *domain.StaffMember) events.Actor {
	return events.Actor{StaffID: &staff.ID, Name: &staff.Name}
}

// normalizeTags trims, lowercases, dedupes and sorts tags. The result is
// never nil.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusWaiting, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusWaiting, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusWaiting:    {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {domain.TicketStatusOpen, domain.TicketStatusInProgress},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
