package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		app     string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "flightlogs",
			app:     "flightsim",
			want:    filepath.Join("flightlogs", "flightsim.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./flightlogs",
			app:     "headless",
			want:    filepath.Join(".", "flightlogs", "headless.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "flightsim"),
			app:     "flightsim",
			want:    filepath.Join("/var", "log", "flightsim", "flightsim.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogFilePath(tt.logsDir, tt.app, sessionStart))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.TraceLevel, ParseLevel("TRACE"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" Warn "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNewLogger_WritesPlainTextToFile(t *testing.T) {
	var console, file bytes.Buffer
	log := New("warn", &console, &file)

	log.Info().Msg("dropped")
	log.Warn().Str("mode", "chase").Msg("kept")

	out := file.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "mode=chase")
	assert.NotContains(t, out, "\x1b[", "file output must not carry color codes")
	assert.Contains(t, console.String(), "kept")
}

func TestNewLogger_NilFile(t *testing.T) {
	var console bytes.Buffer
	log := New("info", &console, nil)
	log.Info().Msg("hello")
	assert.Contains(t, console.String(), "hello")
}

func TestNew_FileOnly(t *testing.T) {
	var file bytes.Buffer
	log := New("info", nil, &file)
	log.Info().Msg("quiet")
	assert.Contains(t, file.String(), "quiet")

	nop := New("info", nil, nil)
	assert.Equal(t, zerolog.Disabled, nop.GetLevel())
}

func TestOpenLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	start := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

	f, err := OpenLogFile(dir, "flightsim", start)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	_, err = f.WriteString("line\n")
	require.NoError(t, err)

	info, err := os.Stat(LogFilePath(dir, "flightsim", start))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
