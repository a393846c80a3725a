package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger logs text to console at level and JSON to logFile at debug or
// lower, so skipped units can be traced after the run. An empty logFile, or
// one that cannot be opened, leaves only the console handler. The returned
// function closes the file.
func SetupLogger(console io.Writer, logFile string, level slog.Level) (*slog.Logger, func() error) {
	noop := func() error { return nil }
	if logFile == "" {
		return slog.New(consoleHandler(console, level)), noop
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		logger := slog.New(consoleHandler(console, level))
		logger.Warn("log directory unavailable, logging to console only", "file", logFile, "error", err)
		return logger, noop
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger := slog.New(consoleHandler(console, level))
		logger.Warn("log file unavailable, logging to console only", "file", logFile, "error", err)
		return logger, noop
	}

	return NewLogger(console, file, level), file.Close
}

// NewLogger fans out to a text handler on console and a JSON handler on sink.
func NewLogger(console, sink io.Writer, level slog.Level) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: min(level, slog.LevelDebug)})
	return slog.New(slogmulti.Fanout(consoleHandler(console, level), jsonHandler))
}

func consoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}
