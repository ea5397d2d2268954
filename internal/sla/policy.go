package sla

import (
	"time"

	"github.com/dpp-hub/portal-core/internal/config"
	"github.com/dpp-hub/portal-core/internal/domain"
)

// Policy maps ticket priority to a resolution target.
type Policy struct {
	targets map[domain.TicketPriority]time.Duration
}

// NewPolicy builds a policy from configured hour targets. Non-positive
// targets leave that priority without an SLA.
func NewPolicy(cfg config.SLAConfig) Policy {
	targets := make(map[domain.TicketPriority]time.Duration, 4)
	for priority, hours := range map[domain.TicketPriority]int{
		domain.TicketPriorityUrgent: cfg.UrgentHours,
		domain.TicketPriorityHigh:   cfg.HighHours,
		domain.TicketPriorityMedium: cfg.MediumHours,
		domain.TicketPriorityLow:    cfg.LowHours,
	} {
		if hours > 0 {
			targets[priority] = time.Duration(hours) * time.Hour
		}
	}
	return Policy{targets: targets}
}

// Deadline returns the resolution deadline for a ticket of the given
// priority created at createdAt, or nil when the priority has no target.
func (p Policy) Deadline(priority domain.TicketPriority, createdAt time.Time) *time.Time {
	target, ok := p.targets[priority]
	if !ok {
		return nil
	}
	deadline := createdAt.Add(target)
	return &deadline
}
