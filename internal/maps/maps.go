package maps

import (
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"gdsa/internal/detect"
	"gdsa/internal/gps"
	"gdsa/internal/travel"
)

type FeatureType string

const (
	FeatureRoute         FeatureType = "route"
	FeatureOrigin        FeatureType = "origin"
	FeatureDestination   FeatureType = "destination"
	FeatureDiscardRadius FeatureType = "discard_radius"
	FeatureStop          FeatureType = "stop"
	FeatureResume        FeatureType = "resume"
)

// Marker is a point annotation on the travel map.
type Marker struct {
	Type     FeatureType
	GroupID  string
	At       gps.Coordinate
	Duration time.Duration
}

// Annotator collects stop and resume markers from a live recording. It
// satisfies recorder.Sink.
type Annotator struct {
	mu      sync.Mutex
	markers map[string][]Marker
}

func (a *Annotator) HandleEvent(t *travel.Travel, ev detect.Event) {
	kind := FeatureStop
	if ev.Kind == detect.EventResume {
		kind = FeatureResume
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.markers == nil {
		a.markers = make(map[string][]Marker)
	}
	a.markers[t.ID] = append(a.markers[t.ID], Marker{
		Type:     kind,
		GroupID:  ev.GroupID,
		At:       ev.Coordinate,
		Duration: ev.Duration,
	})
}

func (a *Annotator) Markers(travelID string) []Marker {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Marker(nil), a.markers[travelID]...)
}

// MarkersFromTravel rebuilds markers from the stop tags of a stored travel.
// Each run of segments sharing a stop id yields a stop marker at the end of
// the run, followed by a resume marker when the travel moved on afterwards.
func MarkersFromTravel(t *travel.Travel) []Marker {
	segments := t.Segments()
	var markers []Marker
	for i := 0; i < len(segments); i++ {
		s := segments[i]
		if !s.Stop() {
			continue
		}
		j := i
		for j+1 < len(segments) && segments[j+1].Stop() && segments[j+1].StopID() == s.StopID() {
			j++
		}
		last := segments[j]
		markers = append(markers, Marker{
			Type:     FeatureStop,
			GroupID:  s.StopID(),
			At:       last.End(),
			Duration: time.Duration(last.StopTime(travel.Second) * float64(time.Second)),
		})
		if j+1 < len(segments) && !segments[j+1].Stop() {
			markers = append(markers, Marker{
				Type:    FeatureResume,
				GroupID: s.StopID(),
				At:      last.End(),
			})
		}
		i = j
	}
	return markers
}

// TravelFeatures renders a travel as GeoJSON: the route line, origin and
// destination points, the discard circle around the origin and markers.
func TravelFeatures(t *travel.Travel, discardRadius float64, markers []Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	segments := t.Segments()
	if len(segments) > 0 {
		line := make(orb.LineString, 0, len(segments)+1)
		line = append(line, segments[0].Start().Point())
		for _, s := range segments {
			line = append(line, s.End().Point())
		}
		f := geojson.NewFeature(line)
		f.Properties["type"] = string(FeatureRoute)
		f.Properties["travel_id"] = t.ID
		f.Properties["distance_m"] = t.Distance(travel.Meter)
		fc.Append(f)
	}

	if origin, ok := t.Origin(); ok {
		fc.Append(pointFeature(FeatureOrigin, origin))
		if discardRadius > 0 {
			f := geojson.NewFeature(gps.Circle(origin, discardRadius))
			f.Properties["type"] = string(FeatureDiscardRadius)
			f.Properties["radius_m"] = discardRadius
			fc.Append(f)
		}
	}
	if destination, ok := t.Destination(); ok {
		fc.Append(pointFeature(FeatureDestination, destination))
	}

	for _, m := range markers {
		f := pointFeature(m.Type, m.At)
		f.Properties["group_id"] = m.GroupID
		if m.Type == FeatureStop {
			f.Properties["duration_s"] = m.Duration.Seconds()
		}
		fc.Append(f)
	}
	return fc
}

func pointFeature(kind FeatureType, c gps.Coordinate) *geojson.Feature {
	f := geojson.NewFeature(c.Point())
	f.Properties["type"] = string(kind)
	return f
}
