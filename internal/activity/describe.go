// Package activity turns ticket activity log entries into display rows.
package activity

import (
	"fmt"
	"strings"

	"github.com/dpp-hub/portal-core/internal/domain"
)

// Icon is the visual marker category of an activity row.
type Icon string

const (
	IconAssigned   Icon = "user_plus"
	IconUnassigned Icon = "user_minus"
	IconStatus     Icon = "status"
	IconPriority   Icon = "priority"
	IconTags       Icon = "tag"
	IconCategory   Icon = "folder"
	IconMerged     Icon = "merge"
	IconReopened   Icon = "reopen"
	IconClosed     Icon = "closed"
	// IconTransition marks actions without a dedicated icon.
	IconTransition Icon = "arrow_right"
)

// Description is the rendered form of one activity entry. Key and Params
// identify the sentence template for translation; Text is the English
// rendering. Key is empty when the raw action is shown instead.
type Description struct {
	Icon   Icon              `json:"icon"`
	Key    string            `json:"key,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Text   string            `json:"text"`
}

type template struct {
	icon     Icon
	key      string
	required []string
	render   func(p map[string]string) string
}

var templates = map[domain.ActivityAction]template{
	domain.ActionAssigned: {
		icon: IconAssigned, key: "activity.assigned", required: []string{"name"},
		render: func(p map[string]string) string { return "Assigned to " + p["name"] },
	},
	domain.ActionUnassigned: {
		icon: IconUnassigned, key: "activity.unassigned",
		render: func(map[string]string) string { return "Assignee removed" },
	},
	domain.ActionStatusChanged: {
		icon: IconStatus, key: "activity.status_changed", required: []string{"from", "to"},
		render: func(p map[string]string) string {
			return fmt.Sprintf("Status changed from %s to %s", p["from"], p["to"])
		},
	},
	domain.ActionPriorityChanged: {
		icon: IconPriority, key: "activity.priority_changed", required: []string{"from", "to"},
		render: func(p map[string]string) string {
			return fmt.Sprintf("Priority changed from %s to %s", p["from"], p["to"])
		},
	},
	domain.ActionTagsChanged: {
		icon: IconTags, key: "activity.tags_changed",
		render: func(map[string]string) string { return "Tags updated" },
	},
	domain.ActionCategoryChanged: {
		icon: IconCategory, key: "activity.category_changed", required: []string{"category"},
		render: func(p map[string]string) string { return "Category changed to " + p["category"] },
	},
	domain.ActionMerged: {
		icon: IconMerged, key: "activity.merged",
		render: func(map[string]string) string { return "Ticket merged" },
	},
	domain.ActionReopened: {
		icon: IconReopened, key: "activity.reopened",
		render: func(map[string]string) string { return "Ticket reopened" },
	},
}

// Describe maps an entry to its description. It never fails: entries missing
// the details their template needs, and actions without a template, fall
// back to the raw action string.
func Describe(entry domain.ActivityLogEntry) Description {
	action := string(entry.Action)

	if entry.Action == domain.ActionClosedWithReason {
		if reason, ok := detail(entry.Details, "reason"); ok {
			return Description{
				Icon:   IconClosed,
				Key:    "activity.closed_with_reason",
				Params: map[string]string{"reason": reason},
				Text:   "Closed: " + reason,
			}
		}
		return Description{Icon: IconClosed, Key: "activity.closed", Text: "Ticket closed"}
	}

	tpl, ok := templates[entry.Action]
	if !ok {
		return Description{Icon: IconTransition, Text: action}
	}

	var params map[string]string
	if len(tpl.required) > 0 {
		params = make(map[string]string, len(tpl.required))
		for _, field := range tpl.required {
			val, ok := detail(entry.Details, field)
			if !ok {
				return Description{Icon: tpl.icon, Text: action}
			}
			params[field] = val
		}
	}
	return Description{Icon: tpl.icon, Key: tpl.key, Params: params, Text: tpl.render(params)}
}

// detail reads a non-blank detail value as a string.
func detail(details map[string]any, key string) (string, bool) {
	raw, ok := details[key]
	if !ok || raw == nil {
		return "", false
	}
	var val string
	switch v := raw.(type) {
	case string:
		val = v
	case fmt.Stringer:
		val = v.String()
	default:
		val = fmt.Sprint(v)
	}
	val = strings.TrimSpace(val)
	return val, val != ""
}
