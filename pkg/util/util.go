package util

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/todotxt/pkg/colors"
	"github.com/harrisonrobin/todotxt/pkg/model"
	"google.golang.org/api/calendar/v3"
)

// PropertyKey is the private extended property that ties an event to a task.
const PropertyKey = "todotxt_key"

// SyncKey identifies a task across runs. Task IDs are fresh on every parse,
// so the key is the task's id: attribute when present, otherwise a hash of
// its title and projects.
func SyncKey(task model.Task) string {
	if id, ok := task.Attribute("id"); ok {
		return "id:" + id
	}
	sum := sha1.Sum([]byte(task.Title + "\x00" + strings.Join(task.Projects, " ")))
	return hex.EncodeToString(sum[:8])
}

// EventNeedsUpdate returns a patch with the fields that differ between the
// existing event and the freshly converted one, or nil when they match.
func EventNeedsUpdate(existingEvent *calendar.Event, targetEvent *calendar.Event) (*calendar.Event, error) {
	if existingEvent == nil || targetEvent == nil {
		return nil, fmt.Errorf("could not compare nil events")
	}
	patch := &calendar.Event{}
	needsUpdate := false

	if existingEvent.Summary != targetEvent.Summary {
		patch.Summary = targetEvent.Summary
		needsUpdate = true
	}
	if existingEvent.Description != targetEvent.Description {
		patch.Description = targetEvent.Description
		needsUpdate = true
	}
	if existingEvent.ColorId != targetEvent.ColorId {
		patch.ColorId = targetEvent.ColorId
		needsUpdate = true
	}
	if eventDate(existingEvent.Start) != eventDate(targetEvent.Start) || eventDate(existingEvent.End) != eventDate(targetEvent.End) {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

func eventDate(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	if dt.Date != "" {
		return dt.Date
	}
	return dt.DateTime
}

// ConvertTaskToCalendarEvent turns a task with a due date into an all-day
// event on that date. cache may be nil, in which case no colour is set.
func ConvertTaskToCalendarEvent(task model.Task, cache *colors.ColorCache, now time.Time) (*calendar.Event, error) {
	if task.DueDate == nil {
		return nil, fmt.Errorf("task has no due date: %q", task.Line())
	}

	summary := task.Title
	if summary == "" {
		summary = task.Line()
	}
	switch {
	case task.Completed:
		summary = "✓ " + summary
	case task.Overdue(now):
		summary = "! " + summary
	}

	colorID := ""
	if cache != nil {
		project := ""
		if len(task.Projects) > 0 {
			project = task.Projects[0]
		}
		colorID = cache.GetColorID(project, !task.Completed)
	}

	due := task.DueDate.UTC()
	return &calendar.Event{
		Summary:     summary,
		ColorId:     colorID,
		Description: describe(task),
		Start:       &calendar.EventDateTime{Date: model.FormatDate(due)},
		End:         &calendar.EventDateTime{Date: model.FormatDate(due.AddDate(0, 0, 1))},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{PropertyKey: SyncKey(task)},
		},
	}, nil
}

func describe(task model.Task) string {
	var b strings.Builder

	if task.Completed {
		b.WriteString("Status: completed\n")
	} else {
		b.WriteString("Status: pending\n")
	}
	if task.Priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", string(task.Priority))
	}
	if len(task.Projects) > 0 {
		fmt.Fprintf(&b, "Projects: +%s\n", strings.Join(task.Projects, " +"))
	}
	if len(task.Contexts) > 0 {
		fmt.Fprintf(&b, "Contexts: @%s\n", strings.Join(task.Contexts, " @"))
	}
	if task.CreatedAt != nil {
		fmt.Fprintf(&b, "Created: %s\n", model.FormatDate(*task.CreatedAt))
	}
	if task.CompletedAt != nil {
		fmt.Fprintf(&b, "Completed: %s\n", model.FormatDate(*task.CompletedAt))
	}
	for _, k := range task.Attributes.Keys() {
		v, _ := task.Attribute(k)
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}

	fmt.Fprintf(&b, "\n%s\n", task.Line())
	return b.String()
}

// GetTaskKeyFromEvent returns the sync key stored on an event.
func GetTaskKeyFromEvent(event *calendar.Event) (string, bool) {
	if event == nil || event.ExtendedProperties == nil {
		return "", false
	}
	key, ok := event.ExtendedProperties.Private[PropertyKey]
	return key, ok && key != ""
}
