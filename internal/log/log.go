// Package log is the application-wide structured logger.
//
// Calls take a message followed by alternating key/value pairs:
//
//	log.Info("Report written", "path", path, "rows", n)
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, zerolog.InfoLevel, "console")
)

// Configure sets the minimum level (trace, debug, info, warn, error) and the
// output format (console, json). Unknown levels fall back to info.
func Configure(level, format string) {
	ConfigureOutput(os.Stderr, level, format)
}

// ConfigureOutput is Configure with an explicit destination.
func ConfigureOutput(w io.Writer, level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, lvl, format)
}

func newLogger(w io.Writer, level zerolog.Level, format string) zerolog.Logger {
	if strings.EqualFold(format, "json") {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Trace logs at trace level
func Trace(msg string, keysAndValues ...any) {
	l := current()
	emit(l.Trace(), msg, keysAndValues)
}

// Debug logs at debug level
func Debug(msg string, keysAndValues ...any) {
	l := current()
	emit(l.Debug(), msg, keysAndValues)
}

// Info logs at info level
func Info(msg string, keysAndValues ...any) {
	l := current()
	emit(l.Info(), msg, keysAndValues)
}

// Warn logs at warn level
func Warn(msg string, keysAndValues ...any) {
	l := current()
	emit(l.Warn(), msg, keysAndValues)
}

// Error logs at error level
func Error(msg string, keysAndValues ...any) {
	l := current()
	emit(l.Error(), msg, keysAndValues)
}

func emit(ev *zerolog.Event, msg string, keysAndValues []any) {
	if ev == nil {
		return
	}

	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = "arg"
		}

		if i+1 >= len(keysAndValues) {
			ev = ev.Str(key, "(MISSING)")
			break
		}

		switch v := keysAndValues[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case time.Time:
			ev = ev.Time(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}

	ev.Msg(msg)
}
