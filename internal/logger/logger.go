package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "call-companion"

var levels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// Options controls where and how log lines are written.
type Options struct {
	Level  string
	Format string // "text" or "json"
	Output io.Writer
}

type implLogger struct {
	zl    zerolog.Logger
	level atomic.Value // string
}

// New creates a text logger on stdout at the given level.
func New(level string) Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions creates a Logger backed by zerolog.
func NewWithOptions(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var zl zerolog.Logger
	if strings.ToLower(opts.Format) == "json" {
		zl = zerolog.New(out)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}
	zl = zl.With().Timestamp().Str("service_name", serviceName).Logger()

	l := &implLogger{zl: zl}
	l.level.Store(strings.ToLower(opts.Level))
	return l
}

func (l *implLogger) SetLevel(level string) {
	l.level.Store(strings.ToLower(level))
}

func (l *implLogger) shouldLog(level string) bool {
	current, _ := l.level.Load().(string)
	currentLevel, ok := levels[current]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.zl.Debug().Msgf(msg, args...)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.zl.Info().Msgf(msg, args...)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.zl.Warn().Msgf(msg, args...)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.zl.Error().Msgf(msg, args...)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...interface{}) {}
func (nopLogger) Info(context.Context, string, ...interface{})  {}
func (nopLogger) Warn(context.Context, string, ...interface{})  {}
func (nopLogger) Error(context.Context, string, ...interface{}) {}
func (nopLogger) SetLevel(string)                               {}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return nopLogger{}
}
