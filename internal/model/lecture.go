package model

import (
	"strings"
	"time"
)

// Lecture represents a single scheduled lecture session.
//
// Date is always an ISO calendar date (YYYY-MM-DD), so date ordering and the
// "future" check can use plain string comparison. EventID and ID start out
// empty: ID is assigned by the store when the lecture is saved, EventID by
// the calendar service when the mirrored event is created.
type Lecture struct {
	Subject   string `json:"subject"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Classroom string `json:"classroom"`
	Professor string `json:"professor"`

	// EventID is the Google Calendar event ID once the lecture is linked.
	EventID string `json:"calendar_event_id,omitempty"`
	// ID is the store-assigned document ID once the lecture is saved.
	ID string `json:"id,omitempty"`
}

// IsFuture reports whether the lecture is dated today or later.
func (l Lecture) IsFuture(today string) bool {
	return l.Date >= today
}

// Today returns the current date in ISO format.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// NormalizeTime pads an HH:MM time with seconds. Times already carrying
// seconds are returned unchanged.
func NormalizeTime(t string) string {
	if strings.Count(t, ":") == 1 {
		return t + ":00"
	}
	return t
}

// FutureOnly returns the lectures dated today or later, preserving order.
func FutureOnly(lectures []Lecture, today string) []Lecture {
	var future []Lecture
	for _, l := range lectures {
		if l.IsFuture(today) {
			future = append(future, l)
		}
	}
	return future
}
