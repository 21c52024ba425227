package stats

import "time"

// TravelStats summarizes one stored travel for listings.
type TravelStats struct {
	TravelID         string
	StartedAt        time.Time
	FinishedAt       time.Time
	DistanceMeters   float64
	SegmentCount     int
	StopCount        int
	StopTotalSeconds float64
	UpdatedAt        time.Time
}

// AverageStopSeconds is zero for travels without stops.
func (s TravelStats) AverageStopSeconds() float64 {
	if s.StopCount == 0 {
		return 0
	}
	return s.StopTotalSeconds / float64(s.StopCount)
}
