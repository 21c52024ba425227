package filters

import (
	"gdsa/internal/gps"
	"gdsa/internal/travel"
)

// DefaultDiscardRadius is the radius in meters around the origin inside which
// new points count as start-up jitter.
const DefaultDiscardRadius = 50.0

// Rule accepts or rejects a newly observed segment of a travel.
type Rule struct {
	Name   string
	Accept func(t *travel.Travel, s *travel.Segment) bool
}

// Chain accepts a segment only when every rule accepts it.
type Chain []Rule

func (c Chain) Filter(t *travel.Travel, s *travel.Segment) bool {
	ok, _ := c.Check(t, s)
	return ok
}

// Check is Filter that also names the first rule that rejected the segment.
func (c Chain) Check(t *travel.Travel, s *travel.Segment) (bool, string) {
	for _, rule := range c {
		if !rule.Accept(t, s) {
			return false, rule.Name
		}
	}
	return true, ""
}

// OriginDistance rejects segments ending closer than radius meters to the
// travel origin. A travel without origin rejects everything.
func OriginDistance(radius float64) Rule {
	return Rule{
		Name: RuleOriginDistance,
		Accept: func(t *travel.Travel, s *travel.Segment) bool {
			origin, ok := t.Origin()
			if !ok {
				return false
			}
			return gps.Distance(origin, s.End()) >= radius
		},
	}
}
