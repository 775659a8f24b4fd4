package combo

// Key is a logical key symbol, e.g. "A" or "LEADER". Combos compare keys
// by value, not identity, so any string the host's key registry knows
// about can be used as a match reference or a result.
type Key string

// LeaderKey names the sentinel key user configurations can reference
// to build combos around a dedicated "leader" key. It answers to two names in
// configuration ("LEADER" and "LDR", see combocfg.ResolveKey) but is a
// single Key value: a combo built with one name matches physical
// events or other combos built with the other. Its semantics within
// the engine are otherwise identical to any other Key.
const LeaderKey Key = "LEADER"

// Coord identifies a physical matrix position. A combo configured with
// match_coord uses Coord comparisons instead of Key comparisons.
type Coord int

// Ref is a single entry of a combo's match tuple: either a Key or a
// Coord, depending on the owning combo's mode. Only one of the two
// fields is meaningful for a given combo; which one is determined by
// that combo's MatchCoord flag, never by the Ref itself.
type Ref struct {
	Key   Key
	Coord Coord
}

// KeyRef builds a Ref for key-mode combos.
func KeyRef(k Key) Ref { return Ref{Key: k} }

// CoordRef builds a Ref for coordinate-mode combos.
func CoordRef(c Coord) Ref { return Ref{Coord: c} }
