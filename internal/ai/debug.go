package ai

import "sync/atomic"

// Per-think debug lines are expensive to assemble (candidate scores, step
// rankings), so the hot paths ask DebugEnabled before building attributes
// instead of relying on the handler level. One atomic load when off.
var debugLogging atomic.Bool

// SetDebugLogging switches verbose think logging on or off. Called once at
// startup, after the log level is known.
func SetDebugLogging(on bool) {
	debugLogging.Store(on)
}

// DebugEnabled reports whether verbose think logging is on.
func DebugEnabled() bool {
	return debugLogging.Load()
}
