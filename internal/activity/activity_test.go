package activity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dpp-hub/portal-core/internal/activity"
	"github.com/dpp-hub/portal-core/internal/domain"
)

func TestDescribeStatusChanged(t *testing.T) {
	desc := activity.Describe(domain.ActivityLogEntry{
		Action:  domain.ActionStatusChanged,
		Details: map[string]any{"from": "open", "to": "closed"},
	})

	require.Equal(t, activity.IconStatus, desc.Icon)
	require.Equal(t, "activity.status_changed", desc.Key)
	require.Equal(t, map[string]string{"from": "open", "to": "closed"}, desc.Params)
	require.Equal(t, "Status changed from open to closed", desc.Text)
}

func TestDescribeMissingDetailsFallsBackToAction(t *testing.T) {
	cases := []domain.ActivityLogEntry{
		{Action: domain.ActionStatusChanged, Details: map[string]any{}},
		{Action: domain.ActionStatusChanged, Details: map[string]any{"from": "open"}},
		{Action: domain.ActionPriorityChanged, Details: nil},
		{Action: domain.ActionAssigned, Details: map[string]any{"name": "   "}},
		{Action: domain.ActionCategoryChanged, Details: map[string]any{"category": nil}},
	}
	for _, entry := range cases {
		desc := activity.Describe(entry)
		require.Equal(t, string(entry.Action), desc.Text)
		require.Empty(t, desc.Key)
		require.Nil(t, desc.Params)
	}
}

func TestDescribeUnknownAction(t *testing.T) {
	desc := activity.Describe(domain.ActivityLogEntry{
		Action:  "custom_foo",
		Details: map[string]any{"from": "a", "to": "b"},
	})

	require.Equal(t, activity.IconTransition, desc.Icon)
	require.Equal(t, "custom_foo", desc.Text)
	require.Empty(t, desc.Key)
}

func TestDescribeFixedTemplates(t *testing.T) {
	cases := map[domain.ActivityAction]struct {
		icon activity.Icon
		text string
	}{
		domain.ActionMerged:      {activity.IconMerged, "Ticket merged"},
		domain.ActionReopened:    {activity.IconReopened, "Ticket reopened"},
		domain.ActionUnassigned:  {activity.IconUnassigned, "Assignee removed"},
		domain.ActionTagsChanged: {activity.IconTags, "Tags updated"},
	}
	for action, want := range cases {
		desc := activity.Describe(domain.ActivityLogEntry{Action: action})
		require.Equal(t, want.icon, desc.Icon, action)
		require.Equal(t, want.text, desc.Text, action)
	}
}

func TestDescribeParameterizedTemplates(t *testing.T) {
	desc := activity.Describe(domain.ActivityLogEntry{
		Action:  domain.ActionAssigned,
		Details: map[string]any{"name": "Mira Holt"},
	})
	require.Equal(t, "Assigned to Mira Holt", desc.Text)

	desc = activity.Describe(domain.ActivityLogEntry{
		Action:  domain.ActionPriorityChanged,
		Details: map[string]any{"from": domain.TicketPriorityLow, "to": domain.TicketPriorityUrgent},
	})
	require.Equal(t, "Priority changed from low to urgent", desc.Text)

	desc = activity.Describe(domain.ActivityLogEntry{
		Action:  domain.ActionCategoryChanged,
		Details: map[string]any{"category": "warranty"},
	})
	require.Equal(t, activity.IconCategory, desc.Icon)
	require.Equal(t, "Category changed to warranty", desc.Text)
}

func TestDescribeClosedWithReason(t *testing.T) {
	desc := activity.Describe(domain.ActivityLogEntry{
		Action:  domain.ActionClosedWithReason,
		Details: map[string]any{"reason": "refund issued"},
	})
	require.Equal(t, activity.IconClosed, desc.Icon)
	require.Equal(t, "Closed: refund issued", desc.Text)

	desc = activity.Describe(domain.ActivityLogEntry{Action: domain.ActionClosedWithReason})
	require.Equal(t, "Ticket closed", desc.Text)
}

func TestTimelineKeepsOrderAndMarksLatest(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	entries := []domain.ActivityLogEntry{
		{ID: "a", Action: domain.ActionAssigned, Details: map[string]any{"name": "Jo"}, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "b", Action: "custom_foo", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "c", Action: domain.ActionMerged, CreatedAt: now.Add(-10 * time.Minute)},
	}

	rows := activity.Timeline(entries, now)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})

	require.False(t, rows[0].IsLatest)
	require.True(t, rows[0].HasConnector)
	require.True(t, rows[1].HasConnector)
	require.True(t, rows[2].IsLatest)
	require.False(t, rows[2].HasConnector)

	require.Equal(t, "Assigned to Jo", rows[0].Text)
	require.Equal(t, activity.IconTransition, rows[1].Icon)
	require.Equal(t, "3 hours ago", rows[0].Relative)
	require.Equal(t, "10 minutes ago", rows[2].Relative)
}

func TestTimelineEmpty(t *testing.T) {
	rows := activity.Timeline(nil, time.Now())
	require.NotNil(t, rows)
	require.Empty(t, rows)
}
