package combo

import "fmt"

// Registry is the fixed, ordered, validated collection of combo
// definitions an Engine is constructed with. Registry order is the
// deterministic tie-breaker whenever multiple combos complete on the
// same event.
type Registry struct {
	defs []Def
}

// NewRegistry validates defs and returns a Registry, or a wrapped
// error naming the offending index if a definition is malformed.
// Registry holds only immutable Defs; an Engine built from it owns the
// actual mutable combo instances.
func NewRegistry(defs []Def) (Registry, error) {
	seen := make(map[string]struct{}, len(defs))
	for i, d := range defs {
		if len(d.Match) == 0 {
			return Registry{}, fmt.Errorf("combo %d: %w", i, ErrEmptyMatch)
		}
		if d.Timeout <= 0 {
			return Registry{}, fmt.Errorf("combo %d: %w", i, ErrNonPositiveWait)
		}
		key := dedupeKey(d)
		if _, dup := seen[key]; dup {
			return Registry{}, fmt.Errorf("combo %d: %w", i, ErrDuplicateCombo)
		}
		seen[key] = struct{}{}
	}
	return Registry{defs: append([]Def(nil), defs...)}, nil
}

func dedupeKey(d Def) string {
	s := fmt.Sprintf("%d|%t|", d.Kind, d.MatchCoord)
	for _, r := range d.Match {
		if d.MatchCoord {
			s += fmt.Sprintf("%d,", r.Coord)
		} else {
			s += string(r.Key) + ","
		}
	}
	return s
}

// Len reports the number of combos in the registry.
func (r Registry) Len() int { return len(r.defs) }
