// Package hostkbd provides a ready-to-use timer/clock implementation of
// the combo.Host contract so an embedding host only has to supply
// ResumeProcessKey.
package hostkbd

import (
	"sync/atomic"
	"time"

	"github.com/vinewz/combo-engine/combo"
)

// DefaultKeyboard implements the timer and clock portions of
// combo.Host on top of the standard library, leaving ResumeProcessKey
// for the embedding type to provide. Embed it by value in a concrete
// host struct built with NewDefaultKeyboard, so its dispatch channel
// is initialized.
//
// combo.Host.SetTimeout requires cb to run on the same goroutine that
// drives the engine, but time.AfterFunc invokes its callback on a
// runtime-managed timer goroutine. DefaultKeyboard bridges the two:
// SetTimeout never calls cb itself, only queues it on Fired. The
// embedding host's Run loop must select on Fired alongside its own
// event source and invoke whatever it receives there, so every call
// into the engine — ProcessKey and timer fires alike — happens on that
// one goroutine.
type DefaultKeyboard struct {
	fired chan func()
}

// NewDefaultKeyboard builds a DefaultKeyboard ready to arm timers.
func NewDefaultKeyboard() DefaultKeyboard {
	return DefaultKeyboard{fired: make(chan func())}
}

// Fired delivers a timer's callback once it elapses. A host's Run loop
// selects on this alongside its own input source and calls whatever it
// receives, keeping every engine call on a single goroutine.
func (k DefaultKeyboard) Fired() <-chan func() {
	return k.fired
}

// timerHandle pairs a *time.Timer with the guard flag SetTimeout and
// CancelTimeout use to agree on whether the timer is still live.
type timerHandle struct {
	timer *time.Timer
	live  int32
}

// SetTimeout arms a one-shot timer using time.AfterFunc. When d
// elapses, cb is queued on Fired instead of being called directly.
func (k DefaultKeyboard) SetTimeout(d time.Duration, cb func()) combo.Timer {
	h := &timerHandle{live: 1}
	h.timer = time.AfterFunc(d, func() {
		if atomic.CompareAndSwapInt32(&h.live, 1, 0) {
			k.fired <- cb
		}
	})
	return h
}

// CancelTimeout stops a timer previously returned by SetTimeout.
// Stopping an already-fired or already-canceled timer is a no-op, same
// as time.Timer.Stop's documented behavior.
func (k DefaultKeyboard) CancelTimeout(t combo.Timer) {
	if t == nil {
		return
	}
	if h, ok := t.(*timerHandle); ok {
		atomic.StoreInt32(&h.live, 0)
		h.timer.Stop()
	}
}

// Now returns the current time. time.Time carries a monotonic reading
// on every platform Go supports, so Sub-based deltas are immune to the
// fixed-width counter wraparound a millisecond-counter clock would
// need explicit unsigned-subtraction handling for.
func (k DefaultKeyboard) Now() time.Time {
	return time.Now()
}
