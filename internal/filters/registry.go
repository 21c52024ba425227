package filters

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const RuleOriginDistance = "origin_distance"

var ErrUnknownRule = errors.New("unknown filter rule")

type Options struct {
	DiscardRadius float64
}

type Factory struct {
	ID          string
	Description string
	Build       func(opts Options) Rule
}

type Registry map[string]Factory

func DefaultRegistry() Registry {
	return Registry{
		RuleOriginDistance: {
			ID:          RuleOriginDistance,
			Description: "Discard points closer to the origin than the discard radius",
			Build: func(opts Options) Rule {
				radius := opts.DiscardRadius
				if radius <= 0 {
					radius = DefaultDiscardRadius
				}
				return OriginDistance(radius)
			},
		},
	}
}

// Build returns a chain with the named rules in the given order. An empty
// name list selects every registered rule.
func (r Registry) Build(names []string, opts Options) (Chain, error) {
	if len(names) == 0 {
		names = r.IDs()
	}
	chain := make(Chain, 0, len(names))
	for _, name := range names {
		factory, ok := r[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
		}
		chain = append(chain, factory.Build(opts))
	}
	return chain, nil
}

func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
