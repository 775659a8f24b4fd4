// Package evdevhost binds the combo engine to a real Linux evdev
// keyboard: it sources physical key events from the first capable
// input device it finds, the same way the reference keyboard listener
// this module grew out of does, and re-emits resolved events through
// a virtual uinput output device so the rest of the OS input stack
// sees combo results exactly like any other keypress.
package evdevhost

import (
	"fmt"
	"strings"

	"github.com/holoplot/go-evdev"
	"golang.org/x/exp/slices"

	"github.com/vinewz/combo-engine/combo"
	"github.com/vinewz/combo-engine/hostkbd"
)

// Host drives a combo.Engine from a physical evdev keyboard and
// forwards resolved events through a virtual output device. It
// satisfies combo.Host.
type Host struct {
	hostkbd.DefaultKeyboard

	engine *combo.Engine
	logger combo.Logger
	in     *evdev.InputDevice
	out    *evdev.InputDevice
}

// findKeyboard scans available evdev devices and returns the path of
// the first one that supports key events and autorepeat and whose
// name suggests it's a keyboard, logging every candidate it rejects
// and why so a misdetected device is diagnosable without a debugger.
func findKeyboard(logger combo.Logger) (string, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return "", fmt.Errorf("listing devices: %w", err)
	}
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			logger.Debugf("evdevhost: skipping %s: %v", p.Path, err)
			continue
		}
		types := dev.CapableTypes()
		has := func(t evdev.EvType) bool {
			return slices.Contains(types, t)
		}
		if !has(evdev.EV_KEY) || !has(evdev.EV_REP) {
			logger.Debugf("evdevhost: skipping %s: missing EV_KEY/EV_REP capability", p.Path)
			dev.Close()
			continue
		}
		name, err := dev.Name()
		if err != nil || !strings.Contains(strings.ToLower(name), "keyboard") {
			logger.Debugf("evdevhost: skipping %s: name %q doesn't look like a keyboard", p.Path, name)
			dev.Close()
			continue
		}
		logger.Infof("evdevhost: selected %s (%s)", p.Path, name)
		dev.Close()
		return p.Path, nil
	}
	return "", fmt.Errorf("evdevhost: no keyboard found")
}

// outputCapabilities is every key code the virtual output device is
// willing to report: the physical keyboard's own keys, so combo
// results that reuse an existing key symbol can still be emitted, plus
// EV_SYN for the mandatory sync report after each key event.
func outputCapabilities(in *evdev.InputDevice) map[evdev.EvType][]evdev.EvCode {
	keyCodes := in.CapableEvents(evdev.EV_KEY)
	return map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keyCodes,
		evdev.EV_SYN: {evdev.SYN_REPORT},
	}
}

// New opens the first detected keyboard, creates a virtual output
// device mirroring its key capabilities, and returns a Host wired to
// engine. Call Run to start processing; Run primes the registry
// itself. A nil logger
// disables diagnostics.
func New(engine *combo.Engine, logger combo.Logger) (*Host, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	path, err := findKeyboard(logger)
	if err != nil {
		return nil, err
	}
	in, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evdevhost: opening %s: %w", path, err)
	}
	out, err := evdev.CreateDevice(
		"combo-engine-virtual-output",
		evdev.InputID{BusType: evdev.BUS_VIRTUAL, Vendor: 0x1, Product: 0x1, Version: 1},
		outputCapabilities(in),
	)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("evdevhost: creating virtual output device: %w", err)
	}
	return &Host{
		DefaultKeyboard: hostkbd.NewDefaultKeyboard(),
		engine:          engine,
		logger:          logger,
		in:              in,
		out:             out,
	}, nil
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}

// Close releases the input and output devices.
func (h *Host) Close() error {
	inErr := h.in.Close()
	outErr := h.out.Close()
	if inErr != nil {
		return inErr
	}
	return outErr
}

// ResumeProcessKey implements combo.Host by writing the resolved event
// to the virtual output device.
func (h *Host) ResumeProcessKey(source *combo.Engine, key combo.Key, pressed bool, coord combo.Coord) {
	code, ok := evdev.KEYFromString(string(key))
	if !ok {
		if h.logger != nil {
			h.logger.Debugf("evdevhost: no evdev code for key %q, dropping", key)
		}
		return
	}
	value := int32(0)
	if pressed {
		value = 1
	}
	if err := h.out.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value}); err != nil {
		if h.logger != nil {
			h.logger.Debugf("evdevhost: write key event: %v", err)
		}
		return
	}
	if err := h.out.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}); err != nil {
		if h.logger != nil {
			h.logger.Debugf("evdevhost: write sync event: %v", err)
		}
	}
}

// Run primes the registry and blocks, reading events from the
// physical keyboard and driving the engine until the device read
// fails (typically because the device was unplugged or Close was
// called). It owns the single goroutine the engine requires: every
// ProcessKey/onTimeout call for this engine happens here, including
// timer fires delivered through DefaultKeyboard.Fired — ReadOne's
// blocking syscall runs on its own goroutine purely to feed the select
// below, which is the only goroutine that ever touches the engine.
func (h *Host) Run() error {
	h.engine.DuringBootup(h)

	events := make(chan *evdev.InputEvent)
	readErrs := make(chan error, 1)
	go func() {
		for {
			ev, err := h.in.ReadOne()
			if err != nil {
				readErrs <- err
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if ev.Type != evdev.EV_KEY {
				continue
			}
			pressed, ok := decodeValue(ev.Value)
			if !ok {
				continue
			}
			coord := combo.Coord(ev.Code)
			h.engine.ProcessKey(h, combo.Key(ev.CodeName()), pressed, coord)
		case cb := <-h.Fired():
			cb()
		case err := <-readErrs:
			return err
		}
	}
}

// decodeValue translates an EV_KEY event's Value into a pressed state.
// Value 2 is autorepeat, which the engine's timing model has no use
// for: it's reported as not-ok so the caller skips it rather than
// treating it as another press.
func decodeValue(value int32) (pressed bool, ok bool) {
	switch value {
	case 0:
		return false, true
	case 1:
		return true, true
	default:
		return false, false
	}
}
