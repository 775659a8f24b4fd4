package combo

import "time"

// NoCoord marks a combo-result event that has no physical matrix
// position, e.g. the synthetic press/release activate/deactivate
// emits for a combo's Result key.
const NoCoord Coord = -1

// bufEvent is one deferred key event awaiting disambiguation. The
// engine's key buffer is a FIFO of these, appended to on press/release
// and drained in order by flushBuffers.
type bufEvent struct {
	coord   Coord
	key     Key
	pressed bool
	at      time.Time
}

// balanceOf sums +1 per buffered press and -1 per buffered release of
// (coord, key). A positive balance means there's a buffered press not
// yet matched by a buffered release of the same key.
func (e *Engine) balanceOf(coord Coord, key Key) int {
	balance := 0
	for _, be := range e.keyBuffer {
		if be.coord == coord && be.key == key {
			if be.pressed {
				balance++
			} else {
				balance--
			}
		}
	}
	return balance
}
