package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
const (
	VerbosityUser  = 0 // no flags: results, warnings and errors only
	VerbosityInfo  = 1 // -v: + build phases and progress
	VerbosityDebug = 2 // -vv: + per-entity naming and merge decisions
	VerbosityTrace = 3 // -vvv: + everything, including score traces
)

// VerbosityToLevel maps verbosity flag counts (-v, -vv, ...) to zap levels.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch verbosity {
	case VerbosityUser:
		return zapcore.WarnLevel
	case VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
