package activity

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dpp-hub/portal-core/internal/domain"
)

// Row is one rendered line of a ticket activity timeline.
type Row struct {
	ID           string            `json:"id"`
	Icon         Icon              `json:"icon"`
	Key          string            `json:"key,omitempty"`
	Params       map[string]string `json:"params,omitempty"`
	Text         string            `json:"text"`
	Actor        *string           `json:"actor,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
	Relative     string            `json:"relative"`
	IsLatest     bool              `json:"is_latest"`
	HasConnector bool              `json:"has_connector"`
}

// Timeline renders entries in the order given, which is expected to be
// oldest first. The last row is the most recent one and is the only row
// without a connector to a following entry.
func Timeline(entries []domain.ActivityLogEntry, now time.Time) []Row {
	rows := make([]Row, 0, len(entries))
	for i, entry := range entries {
		desc := Describe(entry)
		last := i == len(entries)-1
		rows = append(rows, Row{
			ID:           entry.ID,
			Icon:         desc.Icon,
			Key:          desc.Key,
			Params:       desc.Params,
			Text:         desc.Text,
			Actor:        entry.ActorName,
			Timestamp:    entry.CreatedAt,
			Relative:     humanize.RelTime(entry.CreatedAt, now, "ago", "from now"),
			IsLatest:     last,
			HasConnector: !last,
		})
	}
	return rows
}
