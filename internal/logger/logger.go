// Package logger builds the structured JSON logger shared by every component.
// Output is one JSON object per line with "ts", "level" and "msg" keys.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"docstore/internal/config"
)

// New creates a logrus logger from configuration.
// When cfg.File is set, output is rotated through lumberjack; otherwise it goes to stdout.
func New(cfg config.LogConfig) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetFormatter(jsonFormatter())

	if cfg.File == "" {
		l.SetOutput(os.Stdout)
		return l
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		l.SetOutput(os.Stdout)
		l.WithError(err).Error("failed to create log directory, falling back to stdout")
		return l
	}
	l.SetOutput(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
		LocalTime:  true,
	})
	return l
}

// NewWithWriter returns an info-level JSON logger writing to w. Used by tests and middleware.
func NewWithWriter(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(jsonFormatter())
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	return NewWithWriter(io.Discard)
}

// Location resolves an IANA zone name for log timestamps, defaulting to UTC.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func jsonFormatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
		},
	}
}
