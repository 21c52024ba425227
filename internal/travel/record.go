package travel

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gdsa/internal/gps"
)

// RecordVersion is the version written by Travel.Record. Version 1 predates
// stop tagging and carries no stop fields.
const RecordVersion = 2

var ErrUnsupportedVersion = errors.New("unsupported travel record version")

type CoordinateRecord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type SegmentRecord struct {
	Start    CoordinateRecord `json:"start"`
	End      CoordinateRecord `json:"end"`
	Time     float64          `json:"time"`
	Distance float64          `json:"distance"`
	Speed    float64          `json:"speed"`
	StopID   string           `json:"stop_id,omitempty"`
	Stop     bool             `json:"stop,omitempty"`
	StopTime float64          `json:"stop_time,omitempty"`
}

type Record struct {
	Version     int               `json:"version"`
	ID          string            `json:"id"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Origin      *CoordinateRecord `json:"origin,omitempty"`
	Destination *CoordinateRecord `json:"destination,omitempty"`
	Segments    []SegmentRecord   `json:"segments"`
	Distance    float64           `json:"distance"`
	StopCounter int               `json:"stop_counter,omitempty"`
	StopTime    float64           `json:"stop_time,omitempty"`
}

func coordinateRecord(c gps.Coordinate, ok bool) *CoordinateRecord {
	if !ok {
		return nil
	}
	return &CoordinateRecord{Lat: c.Lat, Lon: c.Lon}
}

func (c CoordinateRecord) coordinate() gps.Coordinate {
	return gps.Coordinate{Lat: c.Lat, Lon: c.Lon}
}

func (s *Segment) Record() SegmentRecord {
	return SegmentRecord{
		Start:    CoordinateRecord{Lat: s.start.Lat, Lon: s.start.Lon},
		End:      CoordinateRecord{Lat: s.end.Lat, Lon: s.end.Lon},
		Time:     s.time,
		Distance: s.distance,
		Speed:    s.speed,
		StopID:   s.stopID,
		Stop:     s.stop,
		StopTime: s.stopTime,
	}
}

// SegmentFromRecord restores a segment exactly as recorded; distance and
// speed are not recomputed.
func SegmentFromRecord(r SegmentRecord) *Segment {
	return &Segment{
		start:    r.Start.coordinate(),
		end:      r.End.coordinate(),
		time:     r.Time,
		distance: r.Distance,
		speed:    r.Speed,
		stop:     r.Stop,
		stopID:   r.StopID,
		stopTime: r.StopTime,
	}
}

func (t *Travel) Record() Record {
	rec := Record{
		Version:     RecordVersion,
		ID:          t.ID,
		StartedAt:   t.StartedAt,
		FinishedAt:  t.FinishedAt,
		Origin:      coordinateRecord(t.origin, t.hasOrigin),
		Destination: coordinateRecord(t.destination, t.hasDestination),
		Segments:    make([]SegmentRecord, 0, len(t.segments)),
		Distance:    t.distance,
		StopCounter: t.stopCounter,
		StopTime:    t.stopTime,
	}
	for _, s := range t.segments {
		rec.Segments = append(rec.Segments, s.Record())
	}
	return rec
}

func FromRecord(rec Record) (*Travel, error) {
	if rec.Version < 1 || rec.Version > RecordVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}
	t := &Travel{
		ID:          rec.ID,
		StartedAt:   rec.StartedAt,
		FinishedAt:  rec.FinishedAt,
		segments:    make([]*Segment, 0, len(rec.Segments)),
		distance:    rec.Distance,
		stopCounter: rec.StopCounter,
		stopTime:    rec.StopTime,
	}
	if rec.Origin != nil {
		t.origin = rec.Origin.coordinate()
		t.hasOrigin = true
	}
	if rec.Destination != nil {
		t.destination = rec.Destination.coordinate()
		t.hasDestination = true
	}
	for _, sr := range rec.Segments {
		if rec.Version == 1 {
			sr.Stop, sr.StopID, sr.StopTime = false, "", 0
		}
		t.segments = append(t.segments, SegmentFromRecord(sr))
	}
	if rec.Version == 1 {
		t.stopCounter, t.stopTime = 0, 0
	}
	return t, nil
}

func (t *Travel) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Record())
}

func (t *Travel) UnmarshalJSON(data []byte) error {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	decoded, err := FromRecord(rec)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}
