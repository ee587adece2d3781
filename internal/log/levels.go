// Package log is cfb's diagnostic logger: zap behind a -v=N verbosity knob.
//
// Build and run status lines are not logs; they are written by
// internal/status and are shown regardless of verbosity.
package log

import "go.uber.org/zap/zapcore"

// LevelTrace sits below zap's debug level.
const LevelTrace = zapcore.Level(-2)

// levels is indexed by -v:
//
//	0  errors
//	1  warnings (default)
//	2  config files resolved, sources discovered
//	3  cache decisions, formatted commands
//	4  everything
var levels = [...]zapcore.Level{
	zapcore.ErrorLevel,
	zapcore.WarnLevel,
	zapcore.InfoLevel,
	zapcore.DebugLevel,
	LevelTrace,
}

// LevelFor maps a -v value to a zap level. Out of range values clamp.
func LevelFor(verbosity int) zapcore.Level {
	return levels[max(0, min(verbosity, len(levels)-1))]
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == LevelTrace {
		enc.AppendString("TRACE")
		return
	}
	enc.AppendString(l.CapitalString())
}
