package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"quiet only errors", VerbosityQuiet, zerolog.ErrorLevel},
		{"default warn level", VerbosityDefault, zerolog.WarnLevel},
		{"info level", VerbosityInfo, zerolog.InfoLevel},
		{"debug level", VerbosityDebug, zerolog.DebugLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "gather", "gather.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should exist at %s", logPath)
		})
	}
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func TestGetLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	t.Setenv("GATHER_STATE_DIR", "")

	got := getLogFilePath()
	assert.Equal(t, filepath.FromSlash("/custom/state/gather/gather.log"), got)
}

func TestGetLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	WithRun("run-1")
	logger := GetLogger("save")
	logger.Warn().Msg("test message")

	assert.Contains(t, buf.String(), `"component":"save"`)
	assert.Contains(t, buf.String(), `"run":"run-1"`)
	assert.Contains(t, buf.String(), "test message")
}
