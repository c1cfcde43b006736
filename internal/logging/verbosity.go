package logging

import (
	"log/slog"
	"strings"
)

// VerbosityFromArgs counts -v, -vv and --verbose occurrences before the first
// "--" so the logger can be configured before the command line is parsed.
func VerbosityFromArgs(args []string) int {
	n := 0
	for _, arg := range args {
		switch {
		case arg == "--":
			return n
		case arg == "--verbose":
			n++
		case strings.HasPrefix(arg, "-v") && strings.Trim(arg[1:], "v") == "":
			n += len(arg) - 1
		}
	}
	return n
}

func applyVerbosity(level slog.Level, verbosity int) slog.Level {
	switch {
	case verbosity >= 2:
		return min(level, slog.LevelDebug)
	case verbosity == 1:
		return min(level, slog.LevelInfo)
	default:
		return level
	}
}
