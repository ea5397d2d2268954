// Package sla derives ticket SLA progress from stored timestamps. Nothing here
// writes back to the ticket; every value is recomputed on read.
package sla

import (
	"fmt"
	"time"
)

// AtRiskThreshold is the elapsed share of the SLA window after which a ticket
// that is not yet overdue counts as at risk.
const AtRiskThreshold = 0.75

// Status classifies a ticket against its SLA deadline.
type Status string

const (
	StatusNone    Status = "none"
	StatusOnTrack Status = "on_track"
	StatusAtRisk  Status = "at_risk"
	StatusOverdue Status = "overdue"
)

// State is the SLA view of a ticket at a point in time.
type State struct {
	Defined   bool
	Deadline  time.Time
	Progress  float64
	Remaining time.Duration
	IsOverdue bool
	IsAtRisk  bool
	Status    Status
}

// NoSLA is returned for tickets without a resolution deadline.
var NoSLA = State{Status: StatusNone}

// Compute derives the SLA state of a ticket created at createdAt with an
// optional resolution deadline, as seen at now.
func Compute(createdAt time.Time, deadline *time.Time, now time.Time) State {
	if deadline == nil {
		return NoSLA
	}

	total := deadline.Sub(createdAt)
	elapsed := now.Sub(createdAt)
	remaining := deadline.Sub(now)

	state := State{
		Defined:   true,
		Deadline:  *deadline,
		Progress:  progress(elapsed, total),
		Remaining: remaining,
		IsOverdue: remaining <= 0,
	}
	state.IsAtRisk = !state.IsOverdue && state.Progress > AtRiskThreshold

	switch {
	case state.IsOverdue:
		state.Status = StatusOverdue
	case state.IsAtRisk:
		state.Status = StatusAtRisk
	default:
		state.Status = StatusOnTrack
	}
	return state
}

// progress returns elapsed/total clamped to [0, 1]. A window that does not
// extend past creation counts as fully consumed.
func progress(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	ratio := float64(elapsed) / float64(total)
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}

// Formatted renders the remaining or overdue time without a sign.
func (s State) Formatted() string {
	if !s.Defined {
		return ""
	}
	return FormatDuration(s.Remaining)
}

// Label renders the SLA state for display.
func (s State) Label() string {
	switch {
	case !s.Defined:
		return "No SLA"
	case s.IsOverdue:
		return s.Formatted() + " overdue"
	default:
		return s.Formatted() + " remaining"
	}
}

// FormatDuration renders d as "{days}d {hours}h" once it exceeds 24 whole
// hours, otherwise as "{hours}h {minutes}m". The sign of d is dropped.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	hours := int64(d / time.Hour)
	if hours > 24 {
		return fmt.Sprintf("%dd %dh", hours/24, hours%24)
	}
	minutes := int64((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
