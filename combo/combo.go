package combo

import "time"

// Kind distinguishes the two combo families. Rather than a class
// hierarchy, the two kinds differ only in their match predicates and
// default timing, so they're modeled as a tagged variant dispatched on
// Kind inside matches/usesMatch.
type Kind int

const (
	// Chord matches its member keys in any order within one timeout
	// window.
	Chord Kind = iota
	// Sequence matches its member keys in the given order, each
	// within a per-key timeout of the previous one.
	Sequence
)

func (k Kind) String() string {
	if k == Sequence {
		return "Sequence"
	}
	return "Chord"
}

// state is a combo's position in its activation lifecycle.
type state int

const (
	stateReset state = iota
	stateMatching
	stateActive
	stateIdle
)

// Def is the immutable definition of a combo, supplied by the host at
// registry construction time. Only kind-appropriate defaults are
// applied by NewChord/NewSequence; Def itself carries no defaulting
// logic so it can be built directly by a config loader.
type Def struct {
	Match         []Ref
	Result        Key
	FastReset     bool
	PerKeyTimeout bool
	Timeout       time.Duration
	MatchCoord    bool
	Kind          Kind
}

// NewChord returns a Def for an unordered combo with chord defaults
// (fast_reset=false, per_key_timeout=false, timeout=50ms) applied to
// any zero-valued field the caller didn't set.
func NewChord(match []Ref, result Key) Def {
	return Def{
		Match:   match,
		Result:  result,
		Timeout: 50 * time.Millisecond,
		Kind:    Chord,
	}
}

// NewSequence returns a Def for an ordered combo with sequence
// defaults (fast_reset=true, per_key_timeout=true, timeout=1000ms).
func NewSequence(match []Ref, result Key) Def {
	return Def{
		Match:         match,
		Result:        result,
		FastReset:     true,
		PerKeyTimeout: true,
		Timeout:       1000 * time.Millisecond,
		Kind:          Sequence,
	}
}

// combo is a Def plus its mutable per-instance matching state. Each
// combo owns its own remaining/pressed slices; they are (re)built by
// reset, never shared or aliased between instances — the original
// source declared these as class-level mutable defaults, which would
// alias state across every combo of a kind. reset always copies Match
// into a fresh remaining slice and truncates this combo's own pressed.
type combo struct {
	Def
	remaining []Ref
	pressed   []Ref
	state     state

	// matchCount points at the owning Engine's count of combos
	// currently MATCHING. Every state transition routes through
	// setState so that count stays exactly in sync, mirroring the
	// original's class-level counter without resorting to package-
	// level mutable state: each Engine injects its own counter.
	matchCount *int
}

func newCombo(d Def, matchCount *int) *combo {
	c := &combo{Def: d, matchCount: matchCount}
	c.reset()
	return c
}

// setState applies the state transition bookkeeping: entering
// MATCHING increments *matchCount, leaving it decrements. Self-
// transitions are no-ops.
func (c *combo) setState(s state) {
	if c.state == s {
		return
	}
	if s == stateMatching {
		*c.matchCount++
	}
	if c.state == stateMatching {
		*c.matchCount--
	}
	c.state = s
}

// reset restores remaining to a full copy of Match, clears pressed,
// and returns the combo to MATCHING. remaining is always a new copy
// and pressed only ever grows from this combo's own slice, so no combo
// ever observes another combo's backing array.
func (c *combo) reset() {
	c.remaining = append([]Ref(nil), c.Match...)
	c.pressed = c.pressed[:0]
	c.setState(stateMatching)
}

func refEqual(a, b Ref, byCoord bool) bool {
	if byCoord {
		return a.Coord == b.Coord
	}
	return a.Key == b.Key
}

// matches attempts to consume ref against remaining. CHORD succeeds if
// ref is present anywhere in remaining and removes one occurrence.
// SEQUENCE succeeds only if ref equals the head of remaining, and on
// success pops the head onto pressed.
func (c *combo) matches(ref Ref) bool {
	switch c.Kind {
	case Sequence:
		if len(c.remaining) == 0 || !refEqual(c.remaining[0], ref, c.MatchCoord) {
			return false
		}
		c.pressed = append(c.pressed, c.remaining[0])
		c.remaining = c.remaining[1:]
		return true
	default: // Chord
		for i, m := range c.remaining {
			if refEqual(m, ref, c.MatchCoord) {
				c.remaining = append(c.remaining[:i], c.remaining[i+1:]...)
				return true
			}
		}
		return false
	}
}

// hasMatch reports whether ref appears anywhere in the combo's
// original Match tuple, regardless of current progress.
func (c *combo) hasMatch(ref Ref) bool {
	for _, m := range c.Match {
		if refEqual(m, ref, c.MatchCoord) {
			return true
		}
	}
	return false
}

// usesMatch reports whether this held key is presently part of this
// combo's activity: for CHORD that's the same as hasMatch; for
// SEQUENCE it additionally requires ref to already be in pressed.
func (c *combo) usesMatch(ref Ref) bool {
	if !c.hasMatch(ref) {
		return false
	}
	if c.Kind != Sequence {
		return true
	}
	for _, p := range c.pressed {
		if refEqual(p, ref, c.MatchCoord) {
			return true
		}
	}
	return false
}

// unpress removes ref from pressed, used when a SEQUENCE combo's
// already-matched key is released before the sequence completes.
func (c *combo) unpress(ref Ref) {
	for i, p := range c.pressed {
		if refEqual(p, ref, c.MatchCoord) {
			c.pressed = append(c.pressed[:i], c.pressed[i+1:]...)
			return
		}
	}
}
