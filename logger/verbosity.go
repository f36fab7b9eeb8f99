package logger

import "go.uber.org/zap/zapcore"

// Verbosity levels for the -v flag count.
//
// The monitor is a scheduled batch job whose log is its only record of what
// it did, so the default already includes per-record decisions at info level.
const (
	VerbosityDefault = 0 // No flags: run decisions, warnings, errors
	VerbosityDebug   = 1 // -v: + page fetches, request attempts, skipped records
	VerbosityTrace   = 2 // -vv: + raw field extraction detail
)

// VerbosityToLevel maps verbosity flags (-v, -vv) to zap log levels
//
//	0 (none) -> InfoLevel
//	1+ (-v)  -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	if verbosity >= VerbosityDebug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// ShouldLogTrace returns true for verbosity >= 2 (-vv)
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}

// LevelName returns a human-readable name for a verbosity level
func LevelName(verbosity int) string {
	switch {
	case verbosity <= VerbosityDefault:
		return "Default"
	case verbosity == VerbosityDebug:
		return "Debug (-v)"
	default:
		return "Trace (-vv+)"
	}
}
