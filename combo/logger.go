package combo

// Logger is the diagnostic sink the engine reports activate/deactivate
// transitions, timeouts, and flushes to. A nil Logger disables
// diagnostics, same as the original's debug-flag gate.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
