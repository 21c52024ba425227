package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"gdsa/internal/stats"
	"gdsa/internal/travel"
)

var ErrTravelNotFound = errors.New("travel not found")

type Store struct {
	db *sql.DB
}

type QueuedRoute struct {
	ID         int64
	Path       string
	EnqueuedAt time.Time
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A :memory: database lives per connection.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS travels (
	id TEXT PRIMARY KEY,
	master_key TEXT NOT NULL,
	seq INTEGER NOT NULL,
	record_version INTEGER NOT NULL,
	started_at INTEGER,
	finished_at INTEGER,
	origin_lat REAL,
	origin_lon REAL,
	destination_lat REAL,
	destination_lon REAL,
	distance REAL NOT NULL,
	stop_count INTEGER NOT NULL,
	stop_total_seconds REAL NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS travels_master_key ON travels (master_key, seq);
CREATE TABLE IF NOT EXISTS travel_segments (
	travel_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	start_lat REAL NOT NULL,
	start_lon REAL NOT NULL,
	end_lat REAL NOT NULL,
	end_lon REAL NOT NULL,
	time REAL NOT NULL,
	distance REAL NOT NULL,
	speed REAL NOT NULL,
	stop_id TEXT NOT NULL,
	stop INTEGER NOT NULL,
	stop_time REAL NOT NULL,
	PRIMARY KEY (travel_id, seq)
);
CREATE TABLE IF NOT EXISTS route_queue (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	enqueued_at INTEGER NOT NULL,
	processed_at INTEGER,
	travel_id TEXT,
	last_error TEXT
);
`
	_, err := s.db.ExecContext(ctx, schema)
	return errors.Wrap(err, "init schema")
}

// SaveTravel inserts or replaces t in the master file identified by key. New
// travels go to the end of the list.
func (s *Store) SaveTravel(ctx context.Context, key string, t *travel.Travel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var seq int64
	err = tx.QueryRowContext(ctx, `
SELECT seq
FROM travels
WHERE id = ? AND master_key = ?
`, t.ID, key).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `
SELECT COALESCE(MAX(seq), -1) + 1
FROM travels
WHERE master_key = ?
`, key).Scan(&seq)
	}
	if err != nil {
		return errors.Wrap(err, "travel sequence")
	}

	if err := saveTravelTx(ctx, tx, key, seq, t.Record()); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveMasterFile replaces every travel stored under key with travels, in order.
func (s *Store) SaveMasterFile(ctx context.Context, key string, travels []*travel.Travel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
DELETE FROM travel_segments
WHERE travel_id IN (SELECT id FROM travels WHERE master_key = ?)
`, key); err != nil {
		return errors.Wrap(err, "clear segments")
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM travels
WHERE master_key = ?
`, key); err != nil {
		return errors.Wrap(err, "clear travels")
	}

	for i, t := range travels {
		if err := saveTravelTx(ctx, tx, key, int64(i), t.Record()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveTravelTx(ctx context.Context, tx *sql.Tx, key string, seq int64, rec travel.Record) error {
	var originLat, originLon, destLat, destLon sql.NullFloat64
	if rec.Origin != nil {
		originLat = sql.NullFloat64{Float64: rec.Origin.Lat, Valid: true}
		originLon = sql.NullFloat64{Float64: rec.Origin.Lon, Valid: true}
	}
	if rec.Destination != nil {
		destLat = sql.NullFloat64{Float64: rec.Destination.Lat, Valid: true}
		destLon = sql.NullFloat64{Float64: rec.Destination.Lon, Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
INSERT INTO travels (id, master_key, seq, record_version, started_at, finished_at,
	origin_lat, origin_lon, destination_lat, destination_lon,
	distance, stop_count, stop_total_seconds, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	master_key = excluded.master_key,
	seq = excluded.seq,
	record_version = excluded.record_version,
	started_at = excluded.started_at,
	finished_at = excluded.finished_at,
	origin_lat = excluded.origin_lat,
	origin_lon = excluded.origin_lon,
	destination_lat = excluded.destination_lat,
	destination_lon = excluded.destination_lon,
	distance = excluded.distance,
	stop_count = excluded.stop_count,
	stop_total_seconds = excluded.stop_total_seconds,
	updated_at = excluded.updated_at
`, rec.ID, key, seq, rec.Version, nullTime(rec.StartedAt), nullTime(rec.FinishedAt),
		originLat, originLon, destLat, destLon,
		rec.Distance, rec.StopCounter, rec.StopTime, time.Now().Unix())
	if err != nil {
		return errors.Wrapf(err, "save travel %s", rec.ID)
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM travel_segments
WHERE travel_id = ?
`, rec.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO travel_segments (travel_id, seq, start_lat, start_lon, end_lat, end_lon,
	time, distance, speed, stop_id, stop, stop_time)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, seg := range rec.Segments {
		_, err = stmt.ExecContext(ctx, rec.ID, i,
			seg.Start.Lat, seg.Start.Lon, seg.End.Lat, seg.End.Lon,
			seg.Time, seg.Distance, seg.Speed, seg.StopID, seg.Stop, seg.StopTime)
		if err != nil {
			return errors.Wrapf(err, "save segment %d of travel %s", i, rec.ID)
		}
	}
	return nil
}

func (s *Store) LoadTravel(ctx context.Context, id string) (*travel.Travel, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, record_version, started_at, finished_at, origin_lat, origin_lon,
	destination_lat, destination_lon, distance, stop_count, stop_total_seconds
FROM travels
WHERE id = ?
`, id)
	rec, err := scanTravel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrTravelNotFound, id)
		}
		return nil, err
	}
	return s.finishTravel(ctx, rec)
}

// LoadMasterFile returns the travels stored under key in saved order.
func (s *Store) LoadMasterFile(ctx context.Context, key string) ([]*travel.Travel, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, record_version, started_at, finished_at, origin_lat, origin_lon,
	destination_lat, destination_lon, distance, stop_count, stop_total_seconds
FROM travels
WHERE master_key = ?
ORDER BY seq
`, key)
	if err != nil {
		return nil, err
	}
	var records []travel.Record
	for rows.Next() {
		rec, err := scanTravel(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	travels := make([]*travel.Travel, 0, len(records))
	for _, rec := range records {
		t, err := s.finishTravel(ctx, rec)
		if err != nil {
			return nil, err
		}
		travels = append(travels, t)
	}
	return travels, nil
}

func (s *Store) finishTravel(ctx context.Context, rec travel.Record) (*travel.Travel, error) {
	segments, err := s.loadSegments(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Segments = segments
	return travel.FromRecord(rec)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTravel(row rowScanner) (travel.Record, error) {
	var rec travel.Record
	var startedAt, finishedAt sql.NullInt64
	var originLat, originLon, destLat, destLon sql.NullFloat64
	if err := row.Scan(&rec.ID, &rec.Version, &startedAt, &finishedAt,
		&originLat, &originLon, &destLat, &destLon,
		&rec.Distance, &rec.StopCounter, &rec.StopTime); err != nil {
		return travel.Record{}, err
	}
	rec.StartedAt = fromNullTime(startedAt)
	rec.FinishedAt = fromNullTime(finishedAt)
	if originLat.Valid && originLon.Valid {
		rec.Origin = &travel.CoordinateRecord{Lat: originLat.Float64, Lon: originLon.Float64}
	}
	if destLat.Valid && destLon.Valid {
		rec.Destination = &travel.CoordinateRecord{Lat: destLat.Float64, Lon: destLon.Float64}
	}
	return rec, nil
}

func (s *Store) loadSegments(ctx context.Context, travelID string) ([]travel.SegmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT start_lat, start_lon, end_lat, end_lon, time, distance, speed, stop_id, stop, stop_time
FROM travel_segments
WHERE travel_id = ?
ORDER BY seq
`, travelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []travel.SegmentRecord
	for rows.Next() {
		var seg travel.SegmentRecord
		if err := rows.Scan(&seg.Start.Lat, &seg.Start.Lon, &seg.End.Lat, &seg.End.Lon,
			&seg.Time, &seg.Distance, &seg.Speed, &seg.StopID, &seg.Stop, &seg.StopTime); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (s *Store) DeleteTravel(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `
DELETE FROM travels
WHERE id = ?
`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrap(ErrTravelNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM travel_segments
WHERE travel_id = ?
`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListTravelStats(ctx context.Context, key string) ([]stats.TravelStats, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT t.id, t.started_at, t.finished_at, t.distance, t.stop_count, t.stop_total_seconds, t.updated_at,
	(SELECT COUNT(*) FROM travel_segments s WHERE s.travel_id = t.id)
FROM travels t
WHERE t.master_key = ?
ORDER BY t.seq
`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.TravelStats
	for rows.Next() {
		var st stats.TravelStats
		var startedAt, finishedAt sql.NullInt64
		var updatedAt int64
		if err := rows.Scan(&st.TravelID, &startedAt, &finishedAt, &st.DistanceMeters,
			&st.StopCount, &st.StopTotalSeconds, &updatedAt, &st.SegmentCount); err != nil {
			return nil, err
		}
		st.StartedAt = fromNullTime(startedAt)
		st.FinishedAt = fromNullTime(finishedAt)
		st.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, st)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNullTime(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.Unix(0, v.Int64).UTC()
}
