package recorder

import (
	"errors"

	"gdsa/internal/travel"
)

var ErrNoFixes = errors.New("no fixes to replay")

// Replay records a complete travel from fixes: the first fix becomes the
// origin, the last one the destination.
func (r *Recorder) Replay(fixes []Fix) (*travel.Travel, error) {
	if len(fixes) == 0 {
		return nil, ErrNoFixes
	}
	r.UpdateLocation(fixes[0])
	if _, err := r.Start(fixes[0].Time); err != nil {
		return nil, err
	}
	for _, fix := range fixes[1:] {
		r.UpdateLocation(fix)
	}
	return r.Stop(fixes[len(fixes)-1].Time)
}
