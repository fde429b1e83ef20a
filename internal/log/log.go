package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	logger     zerolog.Logger
	loggerOnce sync.Once
	minLevel   = LevelInfo
)

// initLogger initializes the global logger to write to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger().
			Level(toZerolog(minLevel))
	})
}

func SetLevel(l Level) {
	initLogger()
	minLevel = l
	logger = logger.Level(toZerolog(l))
}

// SetOutput replaces the log sink. Tests use it to capture output as JSON lines.
func SetOutput(w io.Writer) {
	initLogger()
	logger = zerolog.New(w).With().Timestamp().Logger().Level(toZerolog(minLevel))
}

func Debug(msg string, kv ...any) {
	initLogger()
	withKVs(logger.Debug(), kv).Msg(msg)
}

func Info(msg string, kv ...any) {
	initLogger()
	withKVs(logger.Info(), kv).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	withKVs(logger.Error().Err(err), kv).Msg(msg)
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// withKVs attaches key/value pairs to e. Non-string keys are skipped and an
// odd trailing value is ignored.
func withKVs(e *zerolog.Event, kv []any) *zerolog.Event {
	if e == nil {
		return e
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	return e
}
