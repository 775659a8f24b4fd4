// Package combodbg is an interactive terminal-based tester for a
// combo.Engine: it reads raw keystrokes from the controlling TTY (no
// evdev device required) and drives the engine from them, printing a
// live status line of what gets forwarded downstream.
package combodbg

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rivo/uniseg"
	"golang.org/x/term"

	"github.com/vinewz/combo-engine/combo"
	"github.com/vinewz/combo-engine/hostkbd"
)

// Host drives a combo.Engine from raw terminal input. Since a terminal
// reports only runes typed, not key-up events, every rune is treated
// as an instantaneous press immediately followed by a release — still
// enough to exercise CHORD/SEQUENCE timing by typing quickly.
type Host struct {
	hostkbd.DefaultKeyboard

	engine   *combo.Engine
	out      io.Writer
	oldState *term.State
	fd       int
}

// New wraps engine with a terminal test host writing status output to
// out (typically os.Stdout).
func New(engine *combo.Engine, out io.Writer) *Host {
	return &Host{DefaultKeyboard: hostkbd.NewDefaultKeyboard(), engine: engine, out: out}
}

// ResumeProcessKey implements combo.Host by printing the resolved
// event to the status stream.
func (h *Host) ResumeProcessKey(source *combo.Engine, key combo.Key, pressed bool, coord combo.Coord) {
	arrow := "release"
	if pressed {
		arrow = "press"
	}
	label := padLabel(string(key), 12)
	fmt.Fprintf(h.out, "%s %s (coord=%d)\r\n", label, arrow, coord)
}

// padLabel right-pads s to at least width display columns, measuring
// width with uniseg so multi-byte key-name glyphs don't misalign the
// status line the way naive byte- or rune-counting would.
func padLabel(s string, width int) string {
	w := uniseg.StringWidth(s)
	if w >= width {
		return s
	}
	pad := width - w
	b := make([]byte, pad)
	for i := range b {
		b[i] = ' '
	}
	return s + string(b)
}

// Run puts the terminal into raw mode, primes the engine, and blocks
// reading runes until a Ctrl-D rune arrives (returning nil) or reading
// r fails (returning that error). It owns the single goroutine the engine requires, including
// timer fires delivered through DefaultKeyboard.Fired — ReadRune's
// blocking read runs on its own goroutine purely to feed the select
// below, which is the only goroutine that ever touches the engine.
func (h *Host) Run(r *os.File) error {
	fd := int(r.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("combodbg: entering raw mode: %w", err)
	}
	h.fd = fd
	h.oldState = oldState
	defer h.restore()

	h.engine.DuringBootup(h)

	runes := make(chan rune)
	readErrs := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(r)
		for {
			ch, _, err := reader.ReadRune()
			if err != nil {
				readErrs <- err
				return
			}
			runes <- ch
		}
	}()

	for {
		select {
		case ch := <-runes:
			if ch == 0x04 { // Ctrl-D
				return nil
			}
			key := combo.Key(fmt.Sprintf("KEY_%c", upper(ch)))
			coord := combo.Coord(ch)
			h.engine.ProcessKey(h, key, true, coord)
			h.engine.ProcessKey(h, key, false, coord)
		case cb := <-h.Fired():
			cb()
		case err := <-readErrs:
			return err
		}
	}
}

func upper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

func (h *Host) restore() {
	if h.oldState != nil {
		_ = term.Restore(h.fd, h.oldState)
	}
}

// Close restores the terminal if Run is still active.
func (h *Host) Close() error {
	h.restore()
	return nil
}
