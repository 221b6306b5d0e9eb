package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sakhi-safety/sakhi-relay/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONToStdout(t *testing.T) {
	log, err := NewLogger(&config.LoggingConfig{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Equal(t, os.Stdout, log.Out)
}

func TestNewLoggerFileOutputCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sakhi.log")

	log, err := NewLogger(&config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "file",
		File:   config.FileConfig{Path: path, MaxSize: 1, MaxBackups: 1, MaxAge: 1},
	})
	require.NoError(t, err)

	log.Info("hello")
	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(&config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestEntriesCarryServiceField(t *testing.T) {
	log, err := NewLogger(&config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	WithRequest(log, "req-1", "/chat").Info("handled")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "/chat", entry["path"])
	assert.Equal(t, "handled", entry["message"])
}

func TestNewLoggerBothOutputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sakhi.log")

	log, err := NewLogger(&config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "both",
		File:   config.FileConfig{Path: path, MaxSize: 1},
	})
	require.NoError(t, err)
	log.Info("written twice")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written twice")
}
