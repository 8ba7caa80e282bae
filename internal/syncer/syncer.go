package syncer

import (
	"context"
	"fmt"
	"log"

	"github.com/gherardi/geop-sync/internal/model"
)

// Store is the persistent lecture store the syncer reconciles against.
type Store interface {
	FutureLectures(ctx context.Context, today string) ([]model.Lecture, error)
	DeleteFutureLectures(ctx context.Context, today string) error
	SaveLectures(ctx context.Context, lectures []model.Lecture) error
	SetEventID(ctx context.Context, id, eventID string) error
}

// Calendar is the external calendar service lectures are mirrored to.
type Calendar interface {
	CreateEvent(ctx context.Context, lecture model.Lecture) (string, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Scraper produces the fresh set of future lectures from the portal.
type Scraper interface {
	ScrapeLectures(ctx context.Context) ([]model.Lecture, error)
}

// Syncer runs one full synchronization cycle: cleanup, scrape, persist,
// link. Reconciliation is full delete-and-recreate; no field-level diffing.
type Syncer struct {
	store    Store
	calendar Calendar
	scraper  Scraper
}

// New creates a Syncer over the given collaborators.
func New(store Store, calendar Calendar, scraper Scraper) *Syncer {
	return &Syncer{store: store, calendar: calendar, scraper: scraper}
}

// Sync executes one cycle. Only structural failures (scrape, batch persist)
// are returned as errors; per-record calendar and link failures are logged
// and counted without aborting the rest of the cycle.
func (s *Syncer) Sync(ctx context.Context) error {
	today := model.Today()

	s.cleanup(ctx, today)

	lectures, err := s.scraper.ScrapeLectures(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}
	if len(lectures) == 0 {
		log.Printf("No future lectures found, nothing to save")
		return nil
	}

	if err := s.store.SaveLectures(ctx, lectures); err != nil {
		return fmt.Errorf("saving lectures: %w", err)
	}
	log.Printf("Saved %d lectures", len(lectures))

	s.link(ctx, today)
	return nil
}

// cleanup deletes the calendar events linked to stored future lectures, then
// the stored rows themselves. The rows go even when some event deletions
// fail: calendar state may lag the store briefly after a partial failure.
func (s *Syncer) cleanup(ctx context.Context, today string) {
	stored, err := s.store.FutureLectures(ctx, today)
	if err != nil {
		log.Printf("Could not read stored future lectures: %v", err)
	}

	deleted := 0
	for _, lecture := range stored {
		if lecture.EventID == "" {
			continue
		}
		if err := s.calendar.DeleteEvent(ctx, lecture.EventID); err != nil {
			log.Printf("Could not delete calendar event %s: %v", lecture.EventID, err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		log.Printf("Deleted %d calendar events", deleted)
	}

	if err := s.store.DeleteFutureLectures(ctx, today); err != nil {
		log.Printf("Could not delete stored future lectures: %v", err)
	}
}

// link re-reads the stored future lectures (now carrying store IDs), creates
// a calendar event for each and writes the event ID back onto the row. Each
// record is independent; failures affect counters, not control flow.
func (s *Syncer) link(ctx context.Context, today string) {
	stored, err := s.store.FutureLectures(ctx, today)
	if err != nil {
		log.Printf("Could not re-read stored lectures for linking: %v", err)
		return
	}

	linked := 0
	for _, lecture := range stored {
		eventID, err := s.calendar.CreateEvent(ctx, lecture)
		if err != nil {
			log.Printf("Could not create calendar event for %q on %s: %v", lecture.Subject, lecture.Date, err)
			continue
		}
		if err := s.store.SetEventID(ctx, lecture.ID, eventID); err != nil {
			log.Printf("Could not link lecture %s to event %s: %v", lecture.ID, eventID, err)
			continue
		}
		linked++
	}
	log.Printf("Linked %d/%d lectures to calendar events", linked, len(stored))
}
