package recorder

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"gdsa/internal/detect"
	"gdsa/internal/filters"
	"gdsa/internal/gps"
	"gdsa/internal/metrics"
	"gdsa/internal/travel"
)

const DefaultInterval = 5 * time.Second

var (
	ErrAlreadyRecording = errors.New("travel already recording")
	ErrNotRecording     = errors.New("no travel recording")
)

// Fix is one position report from the location source.
type Fix struct {
	Coordinate gps.Coordinate
	Time       time.Time
}

// Sink receives detection events, typically to place map markers.
type Sink interface {
	HandleEvent(t *travel.Travel, ev detect.Event)
}

type SinkFunc func(t *travel.Travel, ev detect.Event)

func (f SinkFunc) HandleEvent(t *travel.Travel, ev detect.Event) { f(t, ev) }

// Update describes what a single fix did to the recording.
type Update struct {
	Segment  *travel.Segment
	Accepted bool
	Rejector string
	Events   []detect.Event
}

// Recorder turns a serial stream of fixes into a Travel. It is not safe for
// concurrent use; fixes must be delivered one at a time.
type Recorder struct {
	Interval time.Duration
	Filters  filters.Chain
	Detector *detect.Detector
	Sink     Sink
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	travel        *travel.Travel
	recording     bool
	current       gps.Coordinate
	lastSaved     gps.Coordinate
	lastSavedTime time.Time
	filtered      int
	discarded     int
}

// Position returns the most recent fix seen, recording or not.
func (r *Recorder) Position() gps.Coordinate { return r.current }

func (r *Recorder) Recording() bool { return r.recording }

// Travel returns the travel being recorded, nil before Start.
func (r *Recorder) Travel() *travel.Travel { return r.travel }

func (r *Recorder) FilteredPoints() int { return r.filtered }

func (r *Recorder) DiscardedSegments() int { return r.discarded }

// Start begins a new travel with the current position as origin. Without a
// position fix the origin stays unset and the origin filter rejects every
// segment.
func (r *Recorder) Start(now time.Time) (*travel.Travel, error) {
	if r.recording {
		return nil, ErrAlreadyRecording
	}
	t := travel.New()
	t.StartedAt = now
	if !t.AddOrigin(r.current) {
		r.log().Warn("starting travel without a position fix", zap.String("travel_id", t.ID))
	}
	if r.Detector != nil && r.Detector.Stops != nil {
		r.Detector.Stops.Reset()
	}

	r.travel = t
	r.recording = true
	r.lastSaved = r.current
	r.lastSavedTime = now
	r.filtered = 0
	r.discarded = 0

	r.log().Info("start recording travel",
		zap.String("travel_id", t.ID),
		zap.Float64("lat", r.current.Lat),
		zap.Float64("lon", r.current.Lon))
	return t, nil
}

// Stop ends the recording, sets the destination to the current position and
// returns the finished travel. Saving or discarding it is up to the caller.
func (r *Recorder) Stop(now time.Time) (*travel.Travel, error) {
	if !r.recording {
		return nil, ErrNotRecording
	}
	t := r.travel
	t.AddDestination(r.current)
	t.FinishedAt = now
	r.recording = false

	r.log().Info("stop recording travel",
		zap.String("travel_id", t.ID),
		zap.Float64("distance_m", t.Distance(travel.Meter)),
		zap.Int("stops", t.OverallStopCounter()),
		zap.Float64("stop_seconds", t.OverallStopTime(travel.Second)),
		zap.Int("segments", len(t.Segments())),
		zap.Int("filtered_points", r.filtered))
	return t, nil
}

// UpdateLocation records fix as the current position and, while recording,
// turns it into a segment once per Interval.
func (r *Recorder) UpdateLocation(fix Fix) (Update, bool) {
	r.current = fix.Coordinate
	if !r.recording {
		return Update{}, false
	}
	if fix.Time.Sub(r.lastSavedTime) < r.interval() {
		return Update{}, false
	}

	elapsed := fix.Time.Sub(r.lastSavedTime).Seconds()
	segment := travel.NewSegment(r.lastSaved, r.current, elapsed)
	r.lastSaved = r.current
	r.lastSavedTime = fix.Time

	if !segment.ShouldSave() {
		r.discarded++
		r.countSegment(metrics.SegmentDiscarded)
		r.log().Debug("discard segment without fix", zap.Stringer("segment", segment))
		return Update{Segment: segment}, true
	}
	return r.handleSegment(segment), true
}

func (r *Recorder) handleSegment(segment *travel.Segment) Update {
	t := r.travel
	t.AddSegment(segment)

	update := Update{Segment: segment}
	accepted, rejector := r.Filters.Check(t, segment)
	if !accepted {
		r.filtered++
		update.Rejector = rejector
		r.countSegment(metrics.SegmentFiltered)
		r.log().Debug("filtered segment",
			zap.String("rule", rejector),
			zap.Int("filtered_points", r.filtered))
		return update
	}

	update.Accepted = true
	meters := segment.Distance(travel.Meter)
	t.AddDistance(meters)
	r.countSegment(metrics.SegmentAccepted)
	if r.Metrics != nil {
		r.Metrics.Distance.Add(meters)
	}
	r.log().Debug("accepted segment",
		zap.Float64("distance_km", t.Distance(travel.Kilometer)),
		zap.Int("speed_kmh", segment.Speed(travel.KilometersPerHour)))

	if r.Detector == nil {
		return update
	}
	update.Events = r.Detector.Detect(t)
	for _, ev := range update.Events {
		if r.Metrics != nil {
			r.Metrics.Events.WithLabelValues(string(ev.Kind)).Inc()
		}
		r.log().Info("detected "+string(ev.Kind),
			zap.String("travel_id", t.ID),
			zap.String("group_id", ev.GroupID),
			zap.Float64("lat", ev.Coordinate.Lat),
			zap.Float64("lon", ev.Coordinate.Lon),
			zap.Duration("duration", ev.Duration))
		if r.Sink != nil {
			r.Sink.HandleEvent(t, ev)
		}
	}
	return update
}

func (r *Recorder) countSegment(result string) {
	if r.Metrics != nil {
		r.Metrics.Segments.WithLabelValues(result).Inc()
	}
}

func (r *Recorder) interval() time.Duration {
	if r.Interval > 0 {
		return r.Interval
	}
	return DefaultInterval
}

func (r *Recorder) log() *zap.Logger {
	if r.Log != nil {
		return r.Log
	}
	return zap.NewNop()
}
