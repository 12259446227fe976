package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore/internal/config"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.WithField("component", "test").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["component"])
	assert.NotEmpty(t, entry["ts"])
}

func TestNew(t *testing.T) {
	t.Run("invalid level falls back to info", func(t *testing.T) {
		l := New(config.LogConfig{Level: "chatty"})
		assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	})

	t.Run("debug level", func(t *testing.T) {
		l := New(config.LogConfig{Level: "debug"})
		assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "docstore.log")
		l := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
		l.Info("rotated")
		assert.FileExists(t, path)
	})
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, Location(""))
	assert.Equal(t, time.UTC, Location("Not/AZone"))
	assert.Equal(t, "UTC", Location("UTC").String())
}
