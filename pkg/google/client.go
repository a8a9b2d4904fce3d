package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/todotxt/pkg/auth"
	"github.com/harrisonrobin/todotxt/pkg/colors"
	"github.com/harrisonrobin/todotxt/pkg/index"
	"google.golang.org/api/calendar/v3"
)

// NewClient creates a Google Calendar client for the calendar named calendarName.
func NewClient(ctx context.Context, store auth.TokenStore, calendarName string, idx *index.EventIndex, cache *colors.ColorCache) (*CalendarClient, error) {
	srv, err := auth.GetCalendarService(ctx, store)
	if err != nil {
		return nil, err
	}

	calendarID, err := FindCalendar(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}

	return NewCalendarClient(srv, calendarID, idx, cache), nil
}

// FindCalendar returns the ID of the user's calendar named calendarName.
func FindCalendar(ctx context.Context, srv *calendar.Service, calendarName string) (string, error) {
	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", calendarName)
}
