package combo

import "time"

// Timer is an opaque handle returned by Host.SetTimeout. The engine
// never inspects it, only passes it back to Host.CancelTimeout.
type Timer any

// Host is every capability the engine needs from its embedding
// keyboard firmware: forwarding resolved events downstream, one-shot
// millisecond timers, and a monotonic clock. It is the Go shape of
// spec.md's "host-provided capabilities".
type Host interface {
	// ResumeProcessKey forwards a resolved key event to the host's
	// downstream processing, bypassing the engine. source identifies
	// the engine that produced the event, for hosts that multiplex
	// several sources.
	ResumeProcessKey(source *Engine, key Key, pressed bool, coord Coord)

	// SetTimeout arms a one-shot timer that calls cb after d elapses.
	// cb must be invoked on the same goroutine the host drives the
	// engine from; the engine is not reentrant.
	SetTimeout(d time.Duration, cb func()) Timer

	// CancelTimeout cancels a timer previously returned by SetTimeout.
	// Canceling an already-fired or already-canceled timer is a no-op.
	CancelTimeout(t Timer)

	// Now returns the current time. Deltas are computed with
	// time.Duration subtraction, which is immune to the fixed-width
	// counter wraparound a millisecond-counter clock would need to
	// guard against.
	Now() time.Time
}
