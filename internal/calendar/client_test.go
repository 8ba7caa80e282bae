package calendar

import (
	"testing"
	"time"

	"github.com/gherardi/geop-sync/internal/model"
)

func romeClient(t *testing.T) *Client {
	t.Helper()
	location, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("loading Europe/Rome: %v", err)
	}
	return &Client{calendarID: "test", location: location}
}

func TestEventDateTimeOffsetFollowsDaylightSaving(t *testing.T) {
	c := romeClient(t)

	tests := []struct {
		date string
		want string
	}{
		// Rome is UTC+2 in summer, UTC+1 in winter.
		{"2025-07-15", "2025-07-15T09:00:00+02:00"},
		{"2025-01-15", "2025-01-15T09:00:00+01:00"},
	}
	for _, tt := range tests {
		got, err := c.eventDateTime(tt.date, "09:00")
		if err != nil {
			t.Fatalf("eventDateTime(%s) failed: %v", tt.date, err)
		}
		if got != tt.want {
			t.Errorf("eventDateTime(%s) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestEventDateTimeNormalizesSeconds(t *testing.T) {
	c := romeClient(t)

	withSeconds, err := c.eventDateTime("2025-07-15", "09:00:00")
	if err != nil {
		t.Fatalf("eventDateTime failed: %v", err)
	}
	withoutSeconds, err := c.eventDateTime("2025-07-15", "09:00")
	if err != nil {
		t.Fatalf("eventDateTime failed: %v", err)
	}
	if withSeconds != withoutSeconds {
		t.Errorf("normalization mismatch: %q vs %q", withSeconds, withoutSeconds)
	}
}

func TestEventDateTimeRejectsGarbage(t *testing.T) {
	c := romeClient(t)
	if _, err := c.eventDateTime("not-a-date", "09:00"); err == nil {
		t.Fatal("eventDateTime should fail on a malformed date")
	}
}

func TestBuildEvent(t *testing.T) {
	c := romeClient(t)

	event, err := c.buildEvent(model.Lecture{
		Subject:   "Algorithms",
		Date:      "2025-09-22",
		StartTime: "09:00",
		EndTime:   "10:30",
		Classroom: "A1",
		Professor: "Dr. Rossi",
	})
	if err != nil {
		t.Fatalf("buildEvent failed: %v", err)
	}

	if event.Summary != "Algorithms" {
		t.Errorf("Summary = %q", event.Summary)
	}
	if event.Description != "Dr. Rossi" {
		t.Errorf("Description = %q", event.Description)
	}
	if event.Location != "A1" {
		t.Errorf("Location = %q", event.Location)
	}
	if event.Start.DateTime != "2025-09-22T09:00:00+02:00" {
		t.Errorf("Start = %q", event.Start.DateTime)
	}
	if event.End.DateTime != "2025-09-22T10:30:00+02:00" {
		t.Errorf("End = %q", event.End.DateTime)
	}
	if event.Start.TimeZone != "Europe/Rome" {
		t.Errorf("TimeZone = %q", event.Start.TimeZone)
	}
}
