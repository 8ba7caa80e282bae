package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/gherardi/geop-sync/internal/model"
)

const batchSize = 250 // Stay well under Firestore's 500 operation limit

// Client wraps the Firestore client for lecture storage. Lectures live in a
// single collection, one document per session, keyed by auto-generated IDs.
type Client struct {
	client     *firestore.Client
	collection string
}

// New creates a new Firestore client.
func New(ctx context.Context, projectID, collection string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Client{
		client:     client,
		collection: collection,
	}, nil
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	return c.client.Close()
}

// FutureLectures retrieves every stored lecture dated today or later,
// including store-assigned document IDs.
func (c *Client) FutureLectures(ctx context.Context, today string) ([]model.Lecture, error) {
	var lectures []model.Lecture

	iter := c.client.Collection(c.collection).Where("date", ">=", today).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating lectures: %w", err)
		}

		lecture := mapToLecture(doc.Data())
		lecture.ID = doc.Ref.ID
		lectures = append(lectures, lecture)
	}

	return lectures, nil
}

// DeleteFutureLectures removes every stored lecture dated today or later.
// Past lectures are kept as history.
func (c *Client) DeleteFutureLectures(ctx context.Context, today string) error {
	coll := c.client.Collection(c.collection)
	query := coll.Where("date", ">=", today)

	for {
		iter := query.Limit(batchSize).Documents(ctx)
		batch := c.client.Batch()
		numDeleted := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("iterating lectures: %w", err)
			}
			batch.Delete(doc.Ref)
			numDeleted++
		}

		if numDeleted == 0 {
			return nil
		}

		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing delete batch: %w", err)
		}

		if numDeleted < batchSize {
			return nil
		}
	}
}

// SaveLectures bulk-inserts the given lectures. Document IDs are assigned by
// Firestore; the input slice is not mutated.
func (c *Client) SaveLectures(ctx context.Context, lectures []model.Lecture) error {
	coll := c.client.Collection(c.collection)

	for i := 0; i < len(lectures); i += batchSize {
		end := i + batchSize
		if end > len(lectures) {
			end = len(lectures)
		}
		batch := c.client.Batch()

		for _, lecture := range lectures[i:end] {
			batch.Set(coll.NewDoc(), lectureToMap(lecture))
		}

		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing insert batch: %w", err)
		}
	}

	return nil
}

// SetEventID links a stored lecture to its calendar event.
func (c *Client) SetEventID(ctx context.Context, id, eventID string) error {
	doc := c.client.Collection(c.collection).Doc(id)
	if _, err := doc.Update(ctx, []firestore.Update{
		{Path: "calendar_event_id", Value: eventID},
	}); err != nil {
		return fmt.Errorf("updating lecture %s: %w", id, err)
	}
	return nil
}

// lectureToMap converts a Lecture to a Firestore document map. The event ID
// is written only once the lecture has been linked.
func lectureToMap(l model.Lecture) map[string]interface{} {
	m := map[string]interface{}{
		"subject":    l.Subject,
		"date":       l.Date,
		"start_time": l.StartTime,
		"end_time":   l.EndTime,
		"classroom":  l.Classroom,
		"professor":  l.Professor,
	}
	if l.EventID != "" {
		m["calendar_event_id"] = l.EventID
	}
	return m
}

// mapToLecture converts a Firestore document map to a Lecture.
func mapToLecture(m map[string]interface{}) model.Lecture {
	l := model.Lecture{}

	if v, ok := m["subject"].(string); ok {
		l.Subject = v
	}
	if v, ok := m["date"].(string); ok {
		l.Date = v
	}
	if v, ok := m["start_time"].(string); ok {
		l.StartTime = v
	}
	if v, ok := m["end_time"].(string); ok {
		l.EndTime = v
	}
	if v, ok := m["classroom"].(string); ok {
		l.Classroom = v
	}
	if v, ok := m["professor"].(string); ok {
		l.Professor = v
	}
	if v, ok := m["calendar_event_id"].(string); ok {
		l.EventID = v
	}

	return l
}
