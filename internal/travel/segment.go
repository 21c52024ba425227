package travel

import (
	"fmt"
	"math"
	"strings"

	"gdsa/internal/gps"
)

// minElapsed replaces a non-positive elapsed time when deriving speed.
const minElapsed = 0.00001

// Segment is the movement between two consecutive fixes. Only the stop tag
// changes after construction.
type Segment struct {
	start    gps.Coordinate
	end      gps.Coordinate
	time     float64
	distance float64
	speed    float64
	stop     bool
	stopID   string
	stopTime float64
}

// NewSegment builds a segment from start to end covered in elapsed seconds.
func NewSegment(start, end gps.Coordinate, elapsed float64) *Segment {
	distance := gps.Distance(start, end)
	denominator := elapsed
	if denominator <= 0 {
		denominator = minElapsed
	}
	return &Segment{
		start:    start,
		end:      end,
		time:     elapsed,
		distance: distance,
		speed:    distance / denominator,
	}
}

func (s *Segment) Start() gps.Coordinate { return s.start }
func (s *Segment) End() gps.Coordinate   { return s.end }

func (s *Segment) Distance(unit LengthUnit) float64 {
	return convertLength(s.distance, unit)
}

func (s *Segment) Time(unit TimeUnit) float64 {
	return convertTime(s.time, unit)
}

// Speed returns the segment speed rounded to the nearest integer.
func (s *Segment) Speed(unit SpeedUnit) int {
	return int(math.Round(convertSpeed(s.speed, unit)))
}

// RawSpeed returns the unrounded speed in meters per second.
func (s *Segment) RawSpeed() float64 { return s.speed }

func (s *Segment) Stop() bool     { return s.stop }
func (s *Segment) StopID() string { return s.stopID }

func (s *Segment) StopTime(unit TimeUnit) float64 {
	return convertTime(s.stopTime, unit)
}

// MarkAsStop tags the segment as part of stop group id whose total duration
// is stopTime seconds. A later call replaces the previous tag.
func (s *Segment) MarkAsStop(id string, stopTime float64) {
	s.stop = true
	s.stopID = id
	s.stopTime = stopTime
}

// ShouldSave reports whether both endpoints were actually acquired.
func (s *Segment) ShouldSave() bool {
	return s.start.Valid() && s.end.Valid()
}

func (s *Segment) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "segment %.6f,%.6f -> %.6f,%.6f", s.start.Lat, s.start.Lon, s.end.Lat, s.end.Lon)
	fmt.Fprintf(&b, " time=%.1fs distance=%.1fm speed=%.2fm/s", s.time, s.distance, s.speed)
	if s.stop {
		fmt.Fprintf(&b, " stop=%s stop_time=%.1fs", s.stopID, s.stopTime)
	}
	return b.String()
}
