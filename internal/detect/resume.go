package detect

import "gdsa/internal/travel"

// DetectResume reports the edge where the newest segment is no longer part of
// a stop but the one before it was.
func DetectResume(t *travel.Travel) (Event, bool) {
	segments := t.Segments()
	if len(segments) < 2 {
		return Event{}, false
	}
	last := segments[len(segments)-1]
	prev := segments[len(segments)-2]
	if last.Stop() || !prev.Stop() {
		return Event{}, false
	}
	return Event{
		Kind:       EventResume,
		GroupID:    prev.StopID(),
		Coordinate: prev.End(),
		Duration:   seconds(t.OverallStopTime(travel.Second)),
	}, true
}

// Detector runs stop detection then resume detection on each accepted segment.
type Detector struct {
	Stops *StopDetector
}

func (d *Detector) Detect(t *travel.Travel) []Event {
	var events []Event
	if d.Stops != nil {
		if ev, ok := d.Stops.Detect(t); ok {
			events = append(events, ev)
		}
	}
	if ev, ok := DetectResume(t); ok {
		events = append(events, ev)
	}
	return events
}
