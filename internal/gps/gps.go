package gps

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// EarthRadius is the mean Earth radius in meters used by Circle.
const EarthRadius = 6371000.0

type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate was ever acquired. Both components at
// exactly zero is the "unset" fix, so a real point at 0,0 reads as invalid.
func (c Coordinate) Valid() bool {
	return c.Lat != 0 || c.Lon != 0
}

// Point returns the coordinate as a lon/lat orb point.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lon: p.Lon()}
}

// Distance returns the great-circle distance between a and b in meters, using
// orb's haversine with an Earth radius of 6,378,137 m (Circle uses EarthRadius).
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	return geo.DistanceHaversine(a.Point(), b.Point())
}

// Circle approximates a circle of radius meters around center with one vertex
// every 8 degrees of bearing.
func Circle(center Coordinate, radius float64) orb.Polygon {
	const stepDegrees = 8.0
	count := int(math.Floor(360.0 / stepDegrees))

	dist := radius / EarthRadius
	lat := center.Lat * math.Pi / 180
	lon := center.Lon * math.Pi / 180

	ring := make(orb.Ring, 0, count+1)
	for i := 0; i < count; i++ {
		bearing := float64(i) * stepDegrees * math.Pi / 180
		pLat := math.Asin(math.Sin(lat)*math.Cos(dist) + math.Cos(lat)*math.Sin(dist)*math.Cos(bearing))
		pLon := lon + math.Atan2(math.Sin(bearing)*math.Sin(dist)*math.Cos(lat), math.Cos(dist)-math.Sin(lat)*math.Sin(pLat))
		ring = append(ring, orb.Point{pLon * 180 / math.Pi, pLat * 180 / math.Pi})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}
