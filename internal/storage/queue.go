package storage

import (
	"context"
	"time"
)

func (s *Store) EnqueueRoute(ctx context.Context, path string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO route_queue (path, enqueued_at)
VALUES (?, ?)
`, path, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DequeueRoute returns the oldest unprocessed route, or sql.ErrNoRows.
func (s *Store) DequeueRoute(ctx context.Context) (QueuedRoute, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, path, enqueued_at
FROM route_queue
WHERE processed_at IS NULL
ORDER BY id
LIMIT 1
`)
	var route QueuedRoute
	var enqueuedAt int64
	if err := row.Scan(&route.ID, &route.Path, &enqueuedAt); err != nil {
		return QueuedRoute{}, err
	}
	route.EnqueuedAt = time.Unix(enqueuedAt, 0)
	return route, nil
}

func (s *Store) MarkRouteProcessed(ctx context.Context, queueID int64, travelID string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE route_queue
SET processed_at = ?, travel_id = ?, last_error = NULL
WHERE id = ?
`, time.Now().Unix(), travelID, queueID)
	return err
}

// MarkRouteFailed closes a queued route with an error so it is not retried.
func (s *Store) MarkRouteFailed(ctx context.Context, queueID int64, message string) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE route_queue
SET processed_at = ?, last_error = ?
WHERE id = ?
`, time.Now().Unix(), message, queueID)
	return err
}

func (s *Store) CountQueue(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM route_queue
WHERE processed_at IS NULL
`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// RouteError returns the recorded failure of a queued route, empty if none.
func (s *Store) RouteError(ctx context.Context, queueID int64) (string, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COALESCE(last_error, '')
FROM route_queue
WHERE id = ?
`, queueID)
	var message string
	if err := row.Scan(&message); err != nil {
		return "", err
	}
	return message, nil
}
