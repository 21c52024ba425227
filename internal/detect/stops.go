package detect

import (
	"github.com/google/uuid"

	"gdsa/internal/travel"
)

const (
	DefaultWindow      = 5
	DefaultMaxDistance = 10.0
)

type State int

const (
	Moving State = iota
	Stopped
)

func (s State) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "moving"
}

// StopDetector classifies the trailing window of a travel's segments as a
// stop when their summed distance is at most MaxDistance meters. It keeps the
// open stop between evaluations so an ongoing stop is counted once.
type StopDetector struct {
	Window      int
	MaxDistance float64

	travelID   string
	state      State
	groupID    string
	groupStart int
	duration   float64
}

func NewStopDetector(window int, maxDistance float64) *StopDetector {
	return &StopDetector{Window: window, MaxDistance: maxDistance}
}

func (d *StopDetector) State() State { return d.state }

// GroupID returns the id of the open stop, empty while moving.
func (d *StopDetector) GroupID() string { return d.groupID }

func (d *StopDetector) Reset() {
	d.travelID = ""
	d.state = Moving
	d.groupID = ""
	d.groupStart = 0
	d.duration = 0
}

func (d *StopDetector) window() int {
	if d.Window > 0 {
		return d.Window
	}
	return DefaultWindow
}

func (d *StopDetector) maxDistance() float64 {
	if d.MaxDistance > 0 {
		return d.MaxDistance
	}
	return DefaultMaxDistance
}

// Detect evaluates the W most recent segments, newest included. It returns a
// stop event only when the travel goes from moving to stopped.
func (d *StopDetector) Detect(t *travel.Travel) (Event, bool) {
	if d.travelID != t.ID {
		d.Reset()
		d.travelID = t.ID
	}

	segments := t.Segments()
	w := d.window()
	if len(segments) < w {
		return Event{}, false
	}
	first := len(segments) - w

	var total float64
	for _, s := range segments[first:] {
		total += s.Distance(travel.Meter)
	}
	if total > d.maxDistance() {
		if d.state == Stopped {
			d.state = Moving
			d.groupID = ""
			d.duration = 0
		}
		return Event{}, false
	}

	if d.state == Stopped {
		d.extend(t, segments)
		return Event{}, false
	}

	// Segments still tagged from an earlier stop stay with it.
	for first < len(segments)-1 && segments[first].Stop() {
		first++
	}

	id := uuid.NewString()
	stopTime := sumTime(segments[first:])
	for _, s := range segments[first:] {
		s.MarkAsStop(id, stopTime)
	}
	t.UpdateOverallStopCounter()
	t.UpdateOverallStopTime(stopTime)

	d.state = Stopped
	d.groupID = id
	d.groupStart = first
	d.duration = stopTime

	return Event{
		Kind:       EventStop,
		GroupID:    id,
		Coordinate: segments[len(segments)-1].End(),
		Duration:   seconds(stopTime),
	}, true
}

// extend folds segments that arrived since the last evaluation into the open
// stop and re-tags the whole group with the new total.
func (d *StopDetector) extend(t *travel.Travel, segments []*travel.Segment) {
	group := segments[d.groupStart:]
	total := sumTime(group)
	for _, s := range group {
		s.MarkAsStop(d.groupID, total)
	}
	if increment := total - d.duration; increment > 0 {
		t.UpdateOverallStopTime(increment)
	}
	d.duration = total
}

func sumTime(segments []*travel.Segment) float64 {
	var total float64
	for _, s := range segments {
		total += s.Time(travel.Second)
	}
	return total
}
