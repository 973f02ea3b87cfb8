package store

import (
	"encoding/json"
	"fmt"
	"time"

	"hifztrack/internal/api"
)

// QueueItem is a submission waiting for connectivity. The payload is kept
// verbatim so a replay sends exactly what the user submitted.
type QueueItem struct {
	ID         string
	Payload    api.Submission
	EnqueuedAt time.Time
	RetryCount int
}

type queueRow struct {
	ID         string `db:"id"`
	Payload    string `db:"payload"`
	EnqueuedAt string `db:"enqueued_at"`
	RetryCount int    `db:"retry_count"`
}

// AppendQueueItem persists a new offline queue item.
func (s *Store) AppendQueueItem(item QueueItem) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return fmt.Errorf("json.Marshal(queue payload) > %w", err)
	}

	if _, err := s.db.Exec(
		"INSERT INTO offline_queue (id, payload, enqueued_at, retry_count) VALUES (?, ?, ?, ?)",
		item.ID, string(payload), item.EnqueuedAt.UTC().Format(time.RFC3339Nano), item.RetryCount,
	); err != nil {
		return fmt.Errorf("db.Exec(insert offline_queue) > %w", err)
	}
	return nil
}

// QueueItems returns all queued submissions in enqueue order. An empty
// queue yields an empty slice.
func (s *Store) QueueItems() ([]QueueItem, error) {
	var rows []queueRow
	if err := s.db.Select(&rows, "SELECT * FROM offline_queue ORDER BY enqueued_at, id"); err != nil {
		return nil, fmt.Errorf("db.Select(offline_queue) > %w", err)
	}

	items := make([]QueueItem, 0, len(rows))
	for _, row := range rows {
		var payload api.Submission
		if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(queue payload %s) > %w", row.ID, err)
		}
		enqueuedAt, err := time.Parse(time.RFC3339Nano, row.EnqueuedAt)
		if err != nil {
			return nil, fmt.Errorf("time.Parse(enqueued_at %s) > %w", row.ID, err)
		}
		items = append(items, QueueItem{
			ID:         row.ID,
			Payload:    payload,
			EnqueuedAt: enqueuedAt,
			RetryCount: row.RetryCount,
		})
	}
	return items, nil
}

// SetQueueRetryCount updates the drain retry counter for a queued item.
func (s *Store) SetQueueRetryCount(id string, retryCount int) error {
	if _, err := s.db.Exec(
		"UPDATE offline_queue SET retry_count = ? WHERE id = ?", retryCount, id,
	); err != nil {
		return fmt.Errorf("db.Exec(update offline_queue) > %w", err)
	}
	return nil
}

// DeleteQueueItem removes a queued item by id. Deleting a missing id is
// not an error.
func (s *Store) DeleteQueueItem(id string) error {
	if _, err := s.db.Exec("DELETE FROM offline_queue WHERE id = ?", id); err != nil {
		return fmt.Errorf("db.Exec(delete offline_queue) > %w", err)
	}
	return nil
}
