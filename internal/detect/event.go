package detect

import (
	"time"

	"gdsa/internal/gps"
)

type EventKind string

const (
	EventStop   EventKind = "stop"
	EventResume EventKind = "resume"
)

// Event is what a detector found on the latest evaluation. Rendering it is up
// to the caller.
type Event struct {
	Kind       EventKind
	GroupID    string
	Coordinate gps.Coordinate
	Duration   time.Duration
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
