package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// console is where records go when no log file is configured.
var console io.Writer = os.Stderr

// SlogManager manages slog-based logging with optional file and GELF sinks.
type SlogManager struct {
	logger  *slog.Logger
	closers []io.Closer
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system. Records go to file when it is set and to the console
// otherwise. Each extra sink gets the records as JSON lines. Sinks that are io.Closers are
// closed by Close.
func (m *SlogManager) Setup(file io.Writer, level string, sinks ...io.Writer) {
	lvl := parseLevel(level)

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	m.closers = nil

	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
		if c, ok := file.(io.Closer); ok {
			m.closers = append(m.closers, c)
		}
	} else {
		handlers = append(handlers, slog.NewTextHandler(console, handlerOpts))
	}

	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		handlers = append(handlers, slog.NewJSONHandler(sink, handlerOpts))
		if c, ok := sink.(io.Closer); ok {
			m.closers = append(m.closers, c)
		}
	}

	m.logger = slog.New(NewMultiHandler(handlers...))
	m.logger.Debug("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Close closes the file and sink writers handed to Setup.
func (m *SlogManager) Close() error {
	var errs []error
	for _, c := range m.closers {
		errs = append(errs, c.Close())
	}
	m.closers = nil
	return errors.Join(errs...)
}
