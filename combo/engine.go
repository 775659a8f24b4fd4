// Package combo implements the combo decision engine: a streaming
// state machine that recognizes chord and sequence key combinations
// from a stream of press/release events and substitutes a result key
// for the ones that complete in time, while faithfully replaying any
// events that don't.
//
// The engine is strictly single-threaded and cooperative. Its entry
// points (ProcessKey and the timer callback it arms) must be driven
// serially from one goroutine — the host's own scan/event loop — and
// must never be reentered concurrently for the same Engine.
package combo

import "time"

// Engine owns a registry of combos and the buffering/arbitration state
// needed to resolve them against a live key event stream. The zero
// value is not usable; build one with NewEngine.
type Engine struct {
	combos []*combo
	logger Logger

	keyBuffer      []bufEvent
	pendingCombos  []*combo
	matchCount     int
	startTimepoint *time.Time
	activeTimeout  Timer
}

// NewEngine builds an Engine from an already-validated Registry. Each
// combo gets its own mutable state, pointed at this Engine's
// matchCount so the "match_count equals combos in MATCHING" invariant
// holds without resorting to any package-level shared state.
func NewEngine(reg Registry, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	e := &Engine{logger: logger}
	e.combos = make([]*combo, len(reg.defs))
	for i, d := range reg.defs {
		e.combos[i] = newCombo(d, &e.matchCount)
	}
	return e
}

// DuringBootup primes the registry. Call once before the first
// ProcessKey.
func (e *Engine) DuringBootup(host Host) { e.resetCombos() }

// BeforeMatrixScan, AfterMatrixScan, BeforeHIDSend, AfterHIDSend,
// OnPowersaveEnable, and OnPowersaveDisable are no-ops, present only
// for module-protocol conformance with the surrounding firmware.
func (e *Engine) BeforeMatrixScan(host Host)   {}
func (e *Engine) AfterMatrixScan(host Host)    {}
func (e *Engine) BeforeHIDSend(host Host)      {}
func (e *Engine) AfterHIDSend(host Host)       {}
func (e *Engine) OnPowersaveEnable(host Host)  {}
func (e *Engine) OnPowersaveDisable(host Host) {}

// ProcessKey is the sole input path for key events: it dispatches to
// the press or release handler depending on pressed.
func (e *Engine) ProcessKey(host Host, key Key, pressed bool, coord Coord) {
	if pressed {
		e.onPress(host, key, coord)
	} else {
		e.onRelease(host, key, coord)
	}
}

func (e *Engine) cancelTimer(host Host) {
	if e.activeTimeout != nil {
		host.CancelTimeout(e.activeTimeout)
		e.activeTimeout = nil
	}
}

// onPress implements spec §4.2. It is reentrant (a flush may re-prime
// the registry and call back into onPress for the same triggering
// event), but each reentry either consumes the buffer or forwards the
// event, so it terminates.
func (e *Engine) onPress(host Host, key Key, coord Coord) {
	e.cancelTimer(host)
	now := host.Now()
	if e.startTimepoint == nil {
		t := now
		e.startTimepoint = &t
	}

	last := *e.startTimepoint
	if n := len(e.keyBuffer); n > 0 {
		last = e.keyBuffer[n-1].at
	}
	dLast := now.Sub(last)
	dStart := now.Sub(*e.startTimepoint)

	ref := Ref{Key: key, Coord: coord}
	e.pendingCombos = e.pendingCombos[:0]
	var longestTimeout time.Duration
	matchingUnfinished := 0

	for _, c := range e.combos {
		if c.state != stateMatching {
			continue
		}
		consumed := c.matches(ref)
		within := dStart < c.Timeout
		if c.PerKeyTimeout {
			within = dLast < c.Timeout
		}
		if consumed && within {
			if len(c.remaining) == 0 {
				e.pendingCombos = append(e.pendingCombos, c)
			} else {
				matchingUnfinished++
			}
			if c.Timeout > longestTimeout {
				longestTimeout = c.Timeout
			}
		} else {
			if consumed && !within {
				e.logger.Warnf("combo %s reset: timed out waiting for %v", c.Kind, c.remaining)
			}
			c.reset()
			c.setState(stateReset)
		}
	}

	if e.matchCount == 0 {
		if len(e.pendingCombos) > 0 || len(e.keyBuffer) > 0 {
			e.flushBuffers(host)
			t := now
			e.startTimepoint = &t
			e.onPress(host, key, coord)
		} else {
			host.ResumeProcessKey(e, key, true, coord)
			e.resetCombos()
		}
		return
	}

	e.keyBuffer = append(e.keyBuffer, bufEvent{coord: coord, key: key, pressed: true, at: now})

	if matchingUnfinished == 0 {
		e.sendPendingCombos(host)
		return
	}

	e.activeTimeout = host.SetTimeout(longestTimeout, func() { e.onTimeout(host) })
}

// onRelease implements spec §4.3.
func (e *Engine) onRelease(host Host, key Key, coord Coord) {
	e.cancelTimer(host)
	now := host.Now()
	ref := Ref{Key: key, Coord: coord}

	var longestTimeout time.Duration
	propagateRelease := true

	for _, c := range e.combos {
		if !c.usesMatch(ref) {
			continue
		}

		if c.state == stateActive {
			e.deactivate(host, c)
			propagateRelease = false
			if c.FastReset {
				c.reset()
			} else {
				c.setState(stateMatching)
			}
		}

		if c.state == stateMatching {
			if c.FastReset {
				// Sequence mid-progress: keep it alive, wait out the
				// per-key timeout for the next required key.
				if c.Timeout > longestTimeout {
					longestTimeout = c.Timeout
				}
				propagateRelease = false
				c.unpress(ref)
			} else {
				c.reset()
			}
		}
	}

	if e.balanceOf(coord, key) > 0 {
		e.keyBuffer = append(e.keyBuffer, bufEvent{coord: coord, key: key, pressed: false, at: now})
		propagateRelease = false
	}

	if e.matchCount == 0 {
		e.resetCombos()
		e.keyBuffer = e.keyBuffer[:0]
	} else if longestTimeout > 0 {
		e.activeTimeout = host.SetTimeout(longestTimeout, func() { e.onTimeout(host) })
	} else {
		e.flushBuffers(host)
	}

	if propagateRelease {
		host.ResumeProcessKey(e, key, false, coord)
	}
}

// sendPendingCombos implements spec §4.4: commit every combo that
// completed its match this decision window.
func (e *Engine) sendPendingCombos(host Host) {
	type bufKey struct {
		coord Coord
		key   Key
	}
	balance := make(map[bufKey]int, len(e.keyBuffer))
	for _, be := range e.keyBuffer {
		balance[bufKey{coord: be.coord, key: be.key}] += map[bool]int{true: 1, false: -1}[be.pressed]
	}

	for _, c := range e.pendingCombos {
		e.activate(host, c)
		c.setState(stateActive)
		for k, count := range balance {
			if count <= 0 && c.hasMatch(Ref{Key: k.key, Coord: k.coord}) {
				e.deactivate(host, c)
				c.setState(stateReset)
				break
			}
		}
	}

	e.pendingCombos = e.pendingCombos[:0]
	e.keyBuffer = e.keyBuffer[:0]
	e.resetCombos()
	e.startTimepoint = nil
}

// flushBuffers implements spec §4.5: press-anchored replay of buffered
// raw events when no combo will complete.
func (e *Engine) flushBuffers(host Host) {
	if len(e.pendingCombos) == 0 && len(e.keyBuffer) == 0 {
		return
	}
	e.logger.Infof("flush: %d pending combo(s), %d buffered key(s)", len(e.pendingCombos), len(e.keyBuffer))

	if len(e.pendingCombos) > 0 {
		e.sendPendingCombos(host)
		return
	}

	for len(e.keyBuffer) > 0 {
		ev := e.keyBuffer[0]
		e.keyBuffer = e.keyBuffer[1:]
		host.ResumeProcessKey(e, ev.key, ev.pressed, ev.coord)
		if !ev.pressed {
			continue
		}

		e.resetCombos()
		t := ev.at
		e.startTimepoint = &t
		oldBuffer := e.keyBuffer
		e.keyBuffer = nil
		for _, old := range oldBuffer {
			if !old.pressed && old.key == ev.key && old.coord == ev.coord {
				// This release's matching press was just replayed
				// directly above; emit it the same way instead of
				// also re-entering ProcessKey, so it's forwarded
				// exactly once.
				host.ResumeProcessKey(e, old.key, old.pressed, old.coord)
				continue
			}
			e.ProcessKey(host, old.key, old.pressed, old.coord)
		}
	}
}

// onTimeout implements spec §4.6. It is guaranteed to make progress:
// the buffer either produces a commit or fully drains downstream.
func (e *Engine) onTimeout(host Host) {
	e.logger.Warnf("decision window timed out with %d buffered key(s)", len(e.keyBuffer))
	e.activeTimeout = nil
	e.startTimepoint = nil
	e.flushBuffers(host)
}

// resetCombos implements spec §4.7: re-prime every non-ACTIVE combo
// back to MATCHING.
func (e *Engine) resetCombos() {
	for _, c := range e.combos {
		if c.state != stateActive {
			c.reset()
		}
	}
}

func (e *Engine) activate(host Host, c *combo) {
	e.logger.Debugf("activate %s -> %s", c.Kind, c.Result)
	host.ResumeProcessKey(e, c.Result, true, NoCoord)
}

func (e *Engine) deactivate(host Host, c *combo) {
	e.logger.Debugf("deactivate %s -> %s", c.Kind, c.Result)
	host.ResumeProcessKey(e, c.Result, false, NoCoord)
}
