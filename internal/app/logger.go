package app

import (
	"fmt"
	"io"
	"log/slog"
)

// newLogger builds the isolated slog.Logger for one App instance; it never
// touches the process-global logger. The level and format strings are the
// ones cli.Parse accepts; anything else is a configuration bug and fails
// instead of silently defaulting.
func newLogger(levelStr, formatStr string, outW io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		return nil, fmt.Errorf("unknown log level %q", levelStr)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch formatStr {
	case "json":
		return slog.New(slog.NewJSONHandler(outW, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(outW, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", formatStr)
	}
}
