package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/gherardi/geop-sync/internal/model"
)

// Export renders lectures as an iCalendar document. timezone is the IANA
// zone the lecture times are scheduled in. Lectures whose date or times do
// not parse are skipped; the error is only returned when nothing renders.
func Export(lectures []model.Lecture, timezone string) (string, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return "", fmt.Errorf("loading timezone %q: %w", timezone, err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//geop-sync//lecture export//EN")

	added := 0
	for _, lecture := range lectures {
		start, errStart := parseStamp(lecture.Date, lecture.StartTime, location)
		end, errEnd := parseStamp(lecture.Date, lecture.EndTime, location)
		if errStart != nil || errEnd != nil {
			continue
		}

		event := cal.AddEvent(eventUID(lecture))
		event.SetCreatedTime(time.Now())
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(lecture.Subject)
		event.SetDescription(lecture.Professor)
		event.SetLocation(lecture.Classroom)
		added++
	}

	if added == 0 && len(lectures) > 0 {
		return "", fmt.Errorf("no lecture could be rendered as an event")
	}
	return cal.Serialize(), nil
}

func parseStamp(date, clock string, location *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04:05", date+"T"+model.NormalizeTime(clock), location)
}

// eventUID derives a stable UID from the lecture fields so re-exports
// produce identical identifiers.
func eventUID(l model.Lecture) string {
	data := fmt.Sprintf("%s|%s|%s|%s", l.Date, l.StartTime, l.Subject, l.Classroom)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16]) + "@geop-sync"
}
