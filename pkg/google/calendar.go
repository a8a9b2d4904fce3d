package google

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harrisonrobin/todotxt/pkg/colors"
	"github.com/harrisonrobin/todotxt/pkg/index"
	"github.com/harrisonrobin/todotxt/pkg/model"
	"github.com/harrisonrobin/todotxt/pkg/util"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// CalendarClient is a Google Calendar API client.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	colors     *colors.ColorCache
	now        func() time.Time
}

// NewCalendarClient creates a new Google Calendar client. idx and cache may be nil.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex, cache *colors.ColorCache) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, colors: cache, now: time.Now}
}

func (c *CalendarClient) CalendarID() string {
	return c.calendarID
}

// SyncEvent creates the event for a task with a due date or updates the one
// already in the calendar.
func (c *CalendarClient) SyncEvent(ctx context.Context, task model.Task) (*calendar.Event, error) {
	event, err := util.ConvertTaskToCalendarEvent(task, c.colors, c.now())
	if err != nil {
		return nil, err
	}
	key := util.SyncKey(task)

	var existingEvent *calendar.Event
	if c.index != nil {
		if eventID := c.index.Get(key); eventID != "" {
			existingEvent, err = c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err != nil || existingEvent.Status == "cancelled" {
				existingEvent = nil
			}
		}
	}

	if existingEvent == nil {
		existingEvent, err = c.GetEventByKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existingEvent != nil {
		patch, err := util.EventNeedsUpdate(existingEvent, event)
		if err != nil {
			log.Printf("could not compare task with its calendar event: %v", err)
			return nil, err
		}
		if patch != nil {
			updatedEvent, err := c.PatchEvent(ctx, existingEvent.Id, patch)
			if err == nil && c.index != nil {
				c.index.Set(key, updatedEvent.Id)
			}
			return updatedEvent, err
		}
		if c.index != nil {
			c.index.Set(key, existingEvent.Id)
		}
		return existingEvent, nil
	}

	createdEvent, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err == nil && c.index != nil {
		c.index.Set(key, createdEvent.Id)
	}
	return createdEvent, err
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

// DeleteEvent deletes an event from the calendar.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	return c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
}

// ListEvents fetches the task events starting at or after timeMin.
func (c *CalendarClient) ListEvents(ctx context.Context, timeMin time.Time) ([]*calendar.Event, error) {
	var items []*calendar.Event
	call := c.srv.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		SingleEvents(true)
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, e := range page.Items {
			if _, ok := util.GetTaskKeyFromEvent(e); ok {
				items = append(items, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return items, nil
}

// GetEventByKey searches for the event carrying the given task sync key.
func (c *CalendarClient) GetEventByKey(ctx context.Context, key string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.PropertyKey, key)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// Prune deletes the indexed events whose keys are not in keep. Events that
// are already gone from the calendar are dropped from the index. Other
// failures are collected and the remaining keys are still pruned.
func (c *CalendarClient) Prune(ctx context.Context, keep map[string]bool) (int, error) {
	if c.index == nil {
		return 0, nil
	}
	deleted := 0
	var errs []error
	for _, key := range c.index.Keys() {
		if keep[key] {
			continue
		}
		err := c.DeleteEvent(ctx, c.index.Get(key))
		if err != nil && !isGone(err) {
			errs = append(errs, fmt.Errorf("could not delete event for %s: %w", key, err))
			continue
		}
		c.index.Remove(key)
		if err == nil {
			deleted++
		}
	}
	return deleted, errors.Join(errs...)
}

// isGone reports whether the API answered 404 or 410 for an event.
func isGone(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
}
