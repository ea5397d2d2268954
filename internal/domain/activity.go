package domain

import "time"

// ActivityAction identifies what happened to a ticket. Values outside the
// constants below are kept verbatim and rendered with a generic marker.
type ActivityAction string

const (
	ActionAssigned         ActivityAction = "assigned"
	ActionUnassigned       ActivityAction = "unassigned"
	ActionStatusChanged    ActivityAction = "status_changed"
	ActionPriorityChanged  ActivityAction = "priority_changed"
	ActionTagsChanged      ActivityAction = "tags_changed"
	ActionCategoryChanged  ActivityAction = "category_changed"
	ActionMerged           ActivityAction = "merged"
	ActionReopened         ActivityAction = "reopened"
	ActionClosedWithReason ActivityAction = "closed_with_reason"
)

// ActivityLogEntry is an immutable audit record for a ticket.
type ActivityLogEntry struct {
	ID        string
	TicketID  string
	Action    ActivityAction
	Details   map[string]any
	ActorName *string
	CreatedAt time.Time
}
