// Package combolog adapts log/slog to combo.Logger for the command
// entry points. The core combo package stays decoupled from any
// particular logging library; this is just the concrete choice the
// daemons make.
package combolog

import (
	"fmt"
	"log/slog"
)

// Slog wraps a *slog.Logger to satisfy combo.Logger.
type Slog struct {
	L *slog.Logger
}

// Debugf implements combo.Logger.
func (s Slog) Debugf(format string, args ...any) {
	s.L.Debug(fmt.Sprintf(format, args...))
}

// Infof implements combo.Logger.
func (s Slog) Infof(format string, args ...any) {
	s.L.Info(fmt.Sprintf(format, args...))
}

// Warnf implements combo.Logger.
func (s Slog) Warnf(format string, args ...any) {
	s.L.Warn(fmt.Sprintf(format, args...))
}
