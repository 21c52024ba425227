package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdsa/internal/gps"
	"gdsa/internal/travel"
)

const metersPerDegree = 111319.49

type walker struct {
	tr  *travel.Travel
	pos gps.Coordinate
}

func newWalker() *walker {
	w := &walker{tr: travel.New(), pos: gps.Coordinate{Lat: 40.0, Lon: -3.0}}
	w.tr.AddOrigin(w.pos)
	return w
}

// step appends a segment moving roughly meters north over six seconds.
func (w *walker) step(meters float64) *travel.Segment {
	next := gps.Coordinate{Lat: w.pos.Lat + meters/metersPerDegree, Lon: w.pos.Lon}
	s := travel.NewSegment(w.pos, next, 6)
	w.tr.AddSegment(s)
	w.tr.AddDistance(s.Distance(travel.Meter))
	w.pos = next
	return s
}

func TestStopDetectorNeedsFullWindow(t *testing.T) {
	w := newWalker()
	d := NewStopDetector(DefaultWindow, DefaultMaxDistance)
	for i := 0; i < DefaultWindow-1; i++ {
		w.step(1)
		_, ok := d.Detect(w.tr)
		assert.False(t, ok)
	}
	for _, s := range w.tr.Segments() {
		assert.False(t, s.Stop())
	}
	assert.Zero(t, w.tr.OverallStopCounter())
	assert.Zero(t, w.tr.OverallStopTime(travel.Second))
	assert.Equal(t, Moving, d.State())
}

func TestStopDetectorThresholdInclusive(t *testing.T) {
	w := newWalker()
	for i := 0; i < DefaultWindow; i++ {
		w.step(2)
	}
	var sum float64
	for _, s := range w.tr.Segments() {
		sum += s.Distance(travel.Meter)
	}

	d := NewStopDetector(DefaultWindow, sum)
	ev, ok := d.Detect(w.tr)
	require.True(t, ok)
	assert.Equal(t, EventStop, ev.Kind)
	assert.Equal(t, w.pos, ev.Coordinate)
	assert.Equal(t, 30*time.Second, ev.Duration)
	assert.Equal(t, 1, w.tr.OverallStopCounter())

	strict := NewStopDetector(DefaultWindow, sum-0.0001)
	other := newWalker()
	for i := 0; i < DefaultWindow; i++ {
		other.step(2)
	}
	_, ok = strict.Detect(other.tr)
	assert.False(t, ok)
}

func TestStopDetectorTagsWholeWindow(t *testing.T) {
	w := newWalker()
	w.step(500)
	d := NewStopDetector(DefaultWindow, DefaultMaxDistance)
	for i := 0; i < DefaultWindow; i++ {
		w.step(1)
		d.Detect(w.tr)
	}

	segments := w.tr.Segments()
	assert.False(t, segments[0].Stop())
	group := segments[1:]
	id := group[0].StopID()
	require.NotEmpty(t, id)
	for _, s := range group {
		assert.True(t, s.Stop())
		assert.Equal(t, id, s.StopID())
		assert.Equal(t, 30.0, s.StopTime(travel.Second))
	}
	assert.Equal(t, Stopped, d.State())
	assert.Equal(t, id, d.GroupID())
	assert.Equal(t, 1, w.tr.OverallStopCounter())
	assert.Equal(t, 30.0, w.tr.OverallStopTime(travel.Second))
}

func TestStopDetectorCountsOngoingStopOnce(t *testing.T) {
	w := newWalker()
	d := NewStopDetector(DefaultWindow, DefaultMaxDistance)
	events := 0
	for i := 0; i < 8; i++ {
		w.step(0.5)
		if _, ok := d.Detect(w.tr); ok {
			events++
		}
	}

	assert.Equal(t, 1, events)
	assert.Equal(t, 1, w.tr.OverallStopCounter())
	assert.Equal(t, 48.0, w.tr.OverallStopTime(travel.Second))
	id := w.tr.Segments()[0].StopID()
	for _, s := range w.tr.Segments() {
		assert.Equal(t, id, s.StopID())
		assert.Equal(t, 48.0, s.StopTime(travel.Second))
	}
}

func TestStopDetectorSeparateStops(t *testing.T) {
	w := newWalker()
	d := NewStopDetector(DefaultWindow, DefaultMaxDistance)
	walk := func(meters float64, n int) {
		for i := 0; i < n; i++ {
			w.step(meters)
			d.Detect(w.tr)
		}
	}

	walk(1, 5)
	walk(300, 1)
	assert.Equal(t, Moving, d.State())
	walk(1, 5)

	assert.Equal(t, 2, w.tr.OverallStopCounter())
	assert.Equal(t, 60.0, w.tr.OverallStopTime(travel.Second))

	segments := w.tr.Segments()
	assert.NotEqual(t, segments[0].StopID(), segments[len(segments)-1].StopID())
	assert.False(t, segments[5].Stop())
}

func TestStopDetectorKeepsEarlierStopTags(t *testing.T) {
	w := newWalker()
	d := NewStopDetector(DefaultWindow, DefaultMaxDistance)
	var events []Event
	for _, meters := range []float64{1, 1, 1, 1, 1, 7, 0} {
		w.step(meters)
		if ev, ok := d.Detect(w.tr); ok {
			events = append(events, ev)
		}
	}

	require.Len(t, events, 2)
	assert.Equal(t, 2, w.tr.OverallStopCounter())
	assert.Equal(t, 42.0, w.tr.OverallStopTime(travel.Second))

	segments := w.tr.Segments()
	for _, s := range segments[:5] {
		assert.Equal(t, events[0].GroupID, s.StopID())
		assert.Equal(t, 30.0, s.StopTime(travel.Second))
	}
	for _, s := range segments[5:] {
		assert.Equal(t, events[1].GroupID, s.StopID())
		assert.Equal(t, 12.0, s.StopTime(travel.Second))
	}
	assert.NotEqual(t, events[0].GroupID, events[1].GroupID)
}

func TestStopDetectorResetsForNewTravel(t *testing.T) {
	d := NewStopDetector(DefaultWindow, DefaultMaxDistance)
	first := newWalker()
	for i := 0; i < 5; i++ {
		first.step(1)
		d.Detect(first.tr)
	}
	require.Equal(t, Stopped, d.State())

	second := newWalker()
	for i := 0; i < 5; i++ {
		second.step(1)
	}
	_, ok := d.Detect(second.tr)
	assert.True(t, ok)
	assert.Equal(t, 1, second.tr.OverallStopCounter())
}
