package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/gherardi/geop-sync/internal/model"
)

// Client wraps the Google Calendar API for lecture events. Events carry the
// subject as summary, the professor as description and the classroom as
// location.
type Client struct {
	svc        *calendar.Service
	calendarID string
	location   *time.Location
}

// New creates a calendar client authenticated with a service-account
// credentials file. timezone is the IANA zone lectures are scheduled in.
func New(ctx context.Context, credentialsFile, calendarID, timezone string) (*Client, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}

	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		calendarID: calendarID,
		location:   location,
	}, nil
}

// CreateEvent mirrors a lecture as a calendar event and returns the ID the
// service assigned to it.
func (c *Client) CreateEvent(ctx context.Context, lecture model.Lecture) (string, error) {
	event, err := c.buildEvent(lecture)
	if err != nil {
		return "", err
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("inserting event for %q on %s: %w", lecture.Subject, lecture.Date, err)
	}
	return created.Id, nil
}

// DeleteEvent removes a previously created calendar event.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event %s: %w", eventID, err)
	}
	return nil
}

func (c *Client) buildEvent(lecture model.Lecture) (*calendar.Event, error) {
	start, err := c.eventDateTime(lecture.Date, lecture.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := c.eventDateTime(lecture.Date, lecture.EndTime)
	if err != nil {
		return nil, err
	}

	return &calendar.Event{
		Summary:     lecture.Subject,
		Description: lecture.Professor,
		Location:    lecture.Classroom,
		Start: &calendar.EventDateTime{
			DateTime: start,
			TimeZone: c.location.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: end,
			TimeZone: c.location.String(),
		},
	}, nil
}

// eventDateTime builds an RFC 3339 datetime for the given ISO date and
// HH:MM[:SS] time. The UTC offset is resolved from the configured zone at
// that date, so it stays correct across daylight-saving transitions.
func (c *Client) eventDateTime(date, clock string) (string, error) {
	stamp := date + "T" + model.NormalizeTime(clock)
	t, err := time.ParseInLocation("2006-01-02T15:04:05", stamp, c.location)
	if err != nil {
		return "", fmt.Errorf("building event datetime from %q: %w", stamp, err)
	}
	return t.Format("2006-01-02T15:04:05-07:00"), nil
}
