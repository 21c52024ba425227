package travel

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gdsa/internal/gps"
)

// Travel is one recording session. Segments are append-only and kept in
// arrival order.
type Travel struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	origin         gps.Coordinate
	hasOrigin      bool
	destination    gps.Coordinate
	hasDestination bool

	segments    []*Segment
	distance    float64
	stopCounter int
	stopTime    float64
}

func New() *Travel {
	return &Travel{ID: uuid.NewString()}
}

// AddOrigin sets the origin unless it is already set. Invalid coordinates
// are ignored and leave the origin unset.
func (t *Travel) AddOrigin(c gps.Coordinate) bool {
	if t.hasOrigin || !c.Valid() {
		return false
	}
	t.origin = c
	t.hasOrigin = true
	return true
}

// AddDestination follows the same first-valid-write rule as AddOrigin.
func (t *Travel) AddDestination(c gps.Coordinate) bool {
	if t.hasDestination || !c.Valid() {
		return false
	}
	t.destination = c
	t.hasDestination = true
	return true
}

func (t *Travel) Origin() (gps.Coordinate, bool) {
	return t.origin, t.hasOrigin
}

func (t *Travel) Destination() (gps.Coordinate, bool) {
	return t.destination, t.hasDestination
}

// AddSegment appends s. It does not touch the cumulative distance.
func (t *Travel) AddSegment(s *Segment) {
	t.segments = append(t.segments, s)
}

// Segments returns the segment list in chronological order. The slice is
// shared with the travel; callers must not append to it.
func (t *Travel) Segments() []*Segment {
	return t.segments
}

func (t *Travel) AddDistance(meters float64) {
	t.distance += meters
}

func (t *Travel) Distance(unit LengthUnit) float64 {
	return convertLength(t.distance, unit)
}

func (t *Travel) UpdateOverallStopCounter() {
	t.stopCounter++
}

func (t *Travel) UpdateOverallStopTime(seconds float64) {
	t.stopTime += seconds
}

func (t *Travel) OverallStopCounter() int {
	return t.stopCounter
}

func (t *Travel) OverallStopTime(unit TimeUnit) float64 {
	return convertTime(t.stopTime, unit)
}

func (t *Travel) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "travel %s\n", t.ID)
	if c, ok := t.Origin(); ok {
		fmt.Fprintf(&b, "  origin: %.6f, %.6f\n", c.Lat, c.Lon)
	} else {
		b.WriteString("  origin: not set\n")
	}
	if c, ok := t.Destination(); ok {
		fmt.Fprintf(&b, "  destination: %.6f, %.6f\n", c.Lat, c.Lon)
	} else {
		b.WriteString("  destination: not set\n")
	}
	fmt.Fprintf(&b, "  distance: %.2fkm\n", t.Distance(Kilometer))
	fmt.Fprintf(&b, "  stops: %d (%.0fs)\n", t.stopCounter, t.stopTime)
	fmt.Fprintf(&b, "  segments: %d\n", len(t.segments))
	for _, s := range t.segments {
		fmt.Fprintf(&b, "    %s\n", s)
	}
	return b.String()
}
