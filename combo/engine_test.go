package combo

import (
	"testing"
	"time"
)

// fakeTimer is a deterministic stand-in for a real one-shot timer: the
// test fires it explicitly instead of waiting on a wall clock.
type fakeTimer struct {
	cb       func()
	canceled bool
}

// fakeHost is a combo.Host whose clock and timers are entirely test-
// controlled, and which records every event forwarded downstream.
type fakeHost struct {
	now    time.Time
	timers []*fakeTimer
	out    []resolved
}

type resolved struct {
	key     Key
	pressed bool
	coord   Coord
}

func newFakeHost() *fakeHost {
	return &fakeHost{now: time.Unix(0, 0)}
}

func (h *fakeHost) SetTimeout(d time.Duration, cb func()) Timer {
	t := &fakeTimer{cb: cb}
	h.timers = append(h.timers, t)
	return t
}

func (h *fakeHost) CancelTimeout(t Timer) {
	if ft, ok := t.(*fakeTimer); ok {
		ft.canceled = true
	}
}

func (h *fakeHost) Now() time.Time { return h.now }

func (h *fakeHost) ResumeProcessKey(source *Engine, key Key, pressed bool, coord Coord) {
	h.out = append(h.out, resolved{key: key, pressed: pressed, coord: coord})
}

func (h *fakeHost) advanceTo(ms int64) {
	h.now = time.Unix(0, ms*int64(time.Millisecond))
}

// fireLatestTimer simulates the most recently armed, still-live timer
// firing.
func (h *fakeHost) fireLatestTimer() {
	for i := len(h.timers) - 1; i >= 0; i-- {
		if !h.timers[i].canceled {
			h.timers[i].cb()
			return
		}
	}
}

const (
	keyA Key = "A"
	keyB Key = "B"
	keyC Key = "C"
)

// chordRegistry and seqRegistry isolate the chord and sequence combos
// of spec.md §8's worked registry (Chord({A,B}->X, timeout=50),
// Sequence([A,B,C]->Y, timeout=1000, per_key_timeout=true)) so each
// end-to-end scenario exercises the mechanic it names without also
// reasoning about the other combo's concurrent, partially-matching
// state — see DESIGN.md's note on the combined-registry open question.
func chordRegistry(t *testing.T) Registry {
	t.Helper()
	chord := NewChord([]Ref{KeyRef(keyA), KeyRef(keyB)}, "X")
	chord.Timeout = 50 * time.Millisecond
	reg, err := NewRegistry([]Def{chord})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func seqRegistry(t *testing.T) Registry {
	t.Helper()
	seq := NewSequence([]Ref{KeyRef(keyA), KeyRef(keyB), KeyRef(keyC)}, "Y")
	seq.Timeout = 1000 * time.Millisecond
	reg, err := NewRegistry([]Def{seq})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func bothRegistry(t *testing.T) Registry {
	t.Helper()
	chord := NewChord([]Ref{KeyRef(keyA), KeyRef(keyB)}, "X")
	chord.Timeout = 50 * time.Millisecond
	seq := NewSequence([]Ref{KeyRef(keyA), KeyRef(keyB), KeyRef(keyC)}, "Y")
	seq.Timeout = 1000 * time.Millisecond
	reg, err := NewRegistry([]Def{chord, seq})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestCleanChord(t *testing.T) {
	h := newFakeHost()
	e := NewEngine(chordRegistry(t), nil)
	e.DuringBootup(h)

	h.advanceTo(0)
	e.ProcessKey(h, keyA, true, 0)
	h.advanceTo(10)
	e.ProcessKey(h, keyB, true, 1)
	h.advanceTo(30)
	e.ProcessKey(h, keyA, false, 0)
	h.advanceTo(40)
	e.ProcessKey(h, keyB, false, 1)

	// The combo's own release of A suppresses A's raw release, but once
	// the combo has deactivated, B's own release is no longer consumed
	// by anything and is forwarded raw, per spec.md §4.3 (only a
	// combo transitioning out of ACTIVE suppresses propagation).
	want := []resolved{
		{key: "X", pressed: true, coord: NoCoord},
		{key: "X", pressed: false, coord: NoCoord},
		{key: keyB, pressed: false, coord: 1},
	}
	assertOut(t, h.out, want)
}

func TestChordTimeout(t *testing.T) {
	h := newFakeHost()
	e := NewEngine(chordRegistry(t), nil)
	e.DuringBootup(h)

	h.advanceTo(0)
	e.ProcessKey(h, keyA, true, 0)
	h.advanceTo(80)
	e.ProcessKey(h, keyB, true, 1)
	// B itself doesn't complete the chord within the timeout either
	// (the flush-and-reprocess treats it as a fresh potential chord
	// start); its own timer must fire before it's replayed.
	h.fireLatestTimer()

	want := []resolved{
		{key: keyA, pressed: true, coord: 0},
		{key: keyB, pressed: true, coord: 1},
	}
	assertOut(t, h.out, want)
}

func TestAbandonedChord(t *testing.T) {
	h := newFakeHost()
	e := NewEngine(chordRegistry(t), nil)
	e.DuringBootup(h)

	h.advanceTo(0)
	e.ProcessKey(h, keyA, true, 0)
	h.advanceTo(5)
	e.ProcessKey(h, keyC, true, 2)

	want := []resolved{
		{key: keyA, pressed: true, coord: 0},
		{key: keyC, pressed: true, coord: 2},
	}
	assertOut(t, h.out, want)
}

func TestSequenceCompletion(t *testing.T) {
	h := newFakeHost()
	e := NewEngine(seqRegistry(t), nil)
	e.DuringBootup(h)

	h.advanceTo(0)
	e.ProcessKey(h, keyA, true, 0)
	h.advanceTo(20)
	e.ProcessKey(h, keyA, false, 0)
	h.advanceTo(100)
	e.ProcessKey(h, keyB, true, 1)
	h.advanceTo(120)
	e.ProcessKey(h, keyB, false, 1)
	h.advanceTo(200)
	e.ProcessKey(h, keyC, true, 2)
	h.advanceTo(220)
	e.ProcessKey(h, keyC, false, 2)

	// Y resolves as an instant tap: by the time C completes the
	// sequence, A and B have already been released and re-buffered,
	// so their buffered balance is zero and send_pending_combos's
	// already-released check (spec.md §4.4 point 3) fires immediately.
	// C's own release then arrives after the combo has already reset,
	// so it is no longer consumed by anything and rides out raw.
	want := []resolved{
		{key: "Y", pressed: true, coord: NoCoord},
		{key: "Y", pressed: false, coord: NoCoord},
		{key: keyC, pressed: false, coord: 2},
	}
	assertOut(t, h.out, want)
}

func TestSequenceBrokenByOutOfOrderKey(t *testing.T) {
	h := newFakeHost()
	e := NewEngine(seqRegistry(t), nil)
	e.DuringBootup(h)

	h.advanceTo(0)
	e.ProcessKey(h, keyA, true, 0)
	h.advanceTo(20)
	e.ProcessKey(h, keyA, false, 0)
	h.advanceTo(100)
	e.ProcessKey(h, keyC, true, 2)

	want := []resolved{
		{key: keyA, pressed: true, coord: 0},
		{key: keyA, pressed: false, coord: 0},
		{key: keyC, pressed: true, coord: 2},
	}
	assertOut(t, h.out, want)
}

// TestChordReleasedMidWindow is end-to-end scenario 6: all of A, B
// pressed and A released again, all inside the 50ms window. The
// commit must not leave X held.
func TestChordReleasedMidWindow(t *testing.T) {
	h := newFakeHost()
	e := NewEngine(chordRegistry(t), nil)
	e.DuringBootup(h)

	h.advanceTo(0)
	e.ProcessKey(h, keyA, true, 0)
	h.advanceTo(10)
	e.ProcessKey(h, keyB, true, 1)
	h.advanceTo(15)
	e.ProcessKey(h, keyA, false, 0)

	sawPress := false
	for _, r := range h.out {
		if r.key == "X" && r.pressed {
			sawPress = true
		}
	}
	if !sawPress {
		t.Fatalf("expected X to have been activated at some point: %+v", h.out)
	}
	held := 0
	for _, r := range h.out {
		if r.key != "X" {
			continue
		}
		if r.pressed {
			held++
		} else {
			held--
		}
	}
	if held != 0 {
		t.Fatalf("X left held (net=%d): %+v", held, h.out)
	}
}

func TestMatchCountInvariant(t *testing.T) {
	h := newFakeHost()
	e := NewEngine(bothRegistry(t), nil)
	e.DuringBootup(h)

	checkInvariant := func() {
		t.Helper()
		count := 0
		for _, c := range e.combos {
			if c.state == stateMatching {
				count++
			}
		}
		if count != e.matchCount {
			t.Fatalf("matchCount=%d but %d combos are MATCHING", e.matchCount, count)
		}
	}

	checkInvariant()
	h.advanceTo(0)
	e.ProcessKey(h, keyA, true, 0)
	checkInvariant()
	h.advanceTo(80)
	e.ProcessKey(h, keyB, true, 1)
	checkInvariant()
	h.fireLatestTimer()
	checkInvariant()
}

func TestAtMostOneTimerArmed(t *testing.T) {
	h := newFakeHost()
	e := NewEngine(bothRegistry(t), nil)
	e.DuringBootup(h)

	h.advanceTo(0)
	e.ProcessKey(h, keyA, true, 0)
	h.advanceTo(5)
	e.ProcessKey(h, keyA, false, 0)
	h.advanceTo(10)
	e.ProcessKey(h, keyB, true, 1)

	live := 0
	for _, tm := range h.timers {
		if !tm.canceled {
			live++
		}
	}
	if live > 1 {
		t.Fatalf("expected at most one live timer, got %d", live)
	}
}

func TestReplayEquivalenceForNonCombo(t *testing.T) {
	h := newFakeHost()
	e := NewEngine(bothRegistry(t), nil)
	e.DuringBootup(h)

	h.advanceTo(0)
	e.ProcessKey(h, "Z", true, 9)
	h.advanceTo(10)
	e.ProcessKey(h, "Z", false, 9)

	want := []resolved{
		{key: "Z", pressed: true, coord: 9},
		{key: "Z", pressed: false, coord: 9},
	}
	assertOut(t, h.out, want)
}

func assertOut(t *testing.T, got []resolved, want []resolved) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d events %+v, want %d events %+v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].key != want[i].key || got[i].pressed != want[i].pressed {
			t.Fatalf("event %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
