package events

import (
	"time"

	"github.com/dpp-hub/portal-core/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketActivityRecorded EventType = "ticket_activity_recorded"
)

// Actor identifies the staff member behind an event.
type Actor struct {
	StaffID *string `json:"staff_id,omitempty"`
	Name    *string `json:"name,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TenantID  string      `json:"tenant_id"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ExternalKey     string                `json:"external_key"`
	Priority        domain.TicketPriority `json:"priority"`
	Title           string                `json:"title"`
	SLAResolutionAt *time.Time            `json:"sla_resolution_at,omitempty"`
}

// TicketActivityPayload mirrors the activity log entry that was appended.
type TicketActivityPayload struct {
	EntryID string                `json:"entry_id"`
	Action  domain.ActivityAction `json:"action"`
	Details map[string]any        `json:"details,omitempty"`
}
