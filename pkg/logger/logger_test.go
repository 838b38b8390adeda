package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.NotNil(t, log.GetZerolog())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "verbose"})
	assert.Error(t, err)
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "crawl.log")
	log, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	log.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"app":"igcrawler"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"disabled", zerolog.Disabled},
	}

	for _, tt := range tests {
		level, err := parseLogLevel(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, level, "level %q", tt.input)
	}

	_, err := parseLogLevel("nope")
	assert.Error(t, err)
}

func TestGetLoggerLazyInit(t *testing.T) {
	old := globalLogger
	globalLogger = nil
	defer func() { globalLogger = old }()

	log := GetLogger()
	assert.NotNil(t, log)
	assert.Same(t, log, GetLogger())
}

func TestTestLoggerCapturesMessages(t *testing.T) {
	log := NewTestLogger()

	log.Info("plain message")
	log.WarnWithFields("with fields", map[string]interface{}{"count": 3})

	messages := log.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "INFO", messages[0].Level)
	assert.Equal(t, "plain message", messages[0].Message)
	assert.Equal(t, 3, messages[1].Fields["count"])

	assert.True(t, log.HasMessage("WARN", "with fields"))
	assert.False(t, log.HasMessage("ERROR", "with fields"))
}

func TestTestLoggerDerivedLoggersShareBuffer(t *testing.T) {
	log := NewTestLogger()

	child := log.WithField("hashtag", "foo")
	child.Info("from child")

	grandchild := child.WithError(fmt.Errorf("boom"))
	grandchild.Warn("from grandchild")

	messages := log.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "foo", messages[0].Fields["hashtag"])
	assert.Equal(t, "foo", messages[1].Fields["hashtag"])
	assert.Equal(t, "boom", messages[1].Fields["error"])
}
