package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{input: "error", want: LogLevelError},
		{input: "warn", want: LogLevelWarn},
		{input: "info", want: LogLevelInfo},
		{input: "debug", want: LogLevelDebug},
		{input: "trace", want: LogLevelTrace},
		{input: "verbose", want: LogLevelError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.input, got.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "", 0, LogLevelInfo)

	logger.Debug("hidden %d", 1)
	logger.Trace("hidden %d", 2)
	assert.Empty(t, buf.String())
	assert.False(t, logger.Enabled(LogLevelDebug))

	logger.Warn("shown %d", 3)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown 3", entry["msg"])

	logger.SetLevel(LogLevelTrace)
	assert.True(t, logger.Enabled(LogLevelTrace))
}

func TestSetDefaultLogger(t *testing.T) {
	previous := getDefaultLogger()
	defer SetDefaultLogger(previous)

	var buf bytes.Buffer
	SetDefaultLogger(New(&buf, "", 0, LogLevelError))
	Info("hidden")
	Error("boom: %v", "reason")

	assert.False(t, Enabled(LogLevelInfo))
	assert.Contains(t, buf.String(), `"msg":"boom: reason"`)
	assert.NotContains(t, buf.String(), "hidden")
}
