package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBufferLogger builds a logger writing to buf, mirroring what New does for
// each format so handler behavior can be asserted without touching stdout.
func newBufferLogger(t *testing.T, cfg *Config, buf *bytes.Buffer) *Logger {
	t.Helper()

	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.EnableSource}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(buf, opts)
	default:
		handler = tint.NewHandler(buf, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(t, &Config{Level: "debug", Format: "json"}, &buf)

	log.Debug("claim attempt", slog.String("job_id", "abc"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "claim attempt", entry["msg"])
	assert.Equal(t, "abc", entry["job_id"])
	assert.Contains(t, entry, "time")
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLines int
	}{
		{name: "debug passes everything", level: "debug", wantLines: 3},
		{name: "info drops debug", level: "info", wantLines: 2},
		{name: "warn drops debug and info", level: "warn", wantLines: 1},
		{name: "unknown level defaults to info", level: "verbose", wantLines: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := newBufferLogger(t, &Config{Level: tt.level, Format: "json"}, &buf)

			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			assert.Len(t, lines, tt.wantLines)
		})
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(t, &Config{Level: "info", Format: "console"}, &buf)

	log.Info("sweep complete", slog.Int("requeued", 2))

	out := buf.String()
	assert.Contains(t, out, "sweep complete")
	assert.Contains(t, out, "requeued=2")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(t, &Config{Level: "info", Format: "json"}, &buf)

	log.With("worker_id", "w-1").Info("started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "w-1", entry["worker_id"])
}

func TestNewFileOutput(t *testing.T) {
	path := t.TempDir() + "/service.log"

	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
