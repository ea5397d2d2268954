package dto

import (
	"time"

	"github.com/dpp-hub/portal-core/internal/activity"
	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/sla"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	Tags        []string              `json:"tags"`
}

// UpdateStatusRequest payload. Reason is recorded when closing.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Reason string              `json:"reason"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignRequest payload.
type AssignRequest struct {
	Assignee string `json:"assignee"`
}

// CategoryRequest payload.
type CategoryRequest struct {
	Category string `json:"category"`
}

// TagsRequest payload.
type TagsRequest struct {
	Tags []string `json:"tags"`
}

// MergeRequest payload.
type MergeRequest struct {
	TargetID string `json:"target_id"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              string                `json:"id"`
	ExternalKey     string                `json:"external_key"`
	Title           string                `json:"title"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	Category        string                `json:"category,omitempty"`
	Tags            []string              `json:"tags"`
	Assignee        *string               `json:"assignee"`
	SLAResolutionAt *time.Time            `json:"sla_resolution_at"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	ClosedAt        *time.Time            `json:"closed_at"`
}

// SLAResponse renders a derived SLA state.
type SLAResponse struct {
	Defined   bool       `json:"defined"`
	Status    sla.Status `json:"status"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Progress  float64    `json:"progress"`
	Remaining string     `json:"remaining,omitempty"`
	IsOverdue bool       `json:"is_overdue"`
	IsAtRisk  bool       `json:"is_at_risk"`
	Label     string     `json:"label"`
}

// ActivityRowResponse is one timeline row.
type ActivityRowResponse struct {
	ID           string            `json:"id"`
	Icon         activity.Icon     `json:"icon"`
	Key          string            `json:"key,omitempty"`
	Params       map[string]string `json:"params,omitempty"`
	Text         string            `json:"text"`
	Actor        *string           `json:"actor"`
	Timestamp    time.Time         `json:"timestamp"`
	Relative     string            `json:"relative"`
	IsLatest     bool              `json:"is_latest"`
	HasConnector bool              `json:"has_connector"`
}

// TicketDetailResponse provides the full ticket page.
type TicketDetailResponse struct {
	TicketSummary
	Description string                `json:"description"`
	SLA         SLAResponse           `json:"sla"`
	Activity    []ActivityRowResponse `json:"activity"`
}
