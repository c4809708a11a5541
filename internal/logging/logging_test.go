package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"verbose", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSONWithModule(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Out: &buf})
	require.NoError(t, err)

	patchLogger := Module(logger, "patch")
	patchLogger.Debug().Msg("hidden")
	patchLogger.Info().Str("dir", "versions/scylla/2.16.0").Msg("patch applied")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "patch", line["module"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "patch applied", line["message"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Out: &buf, Console: true})
	require.NoError(t, err)

	logger.Debug().Msg("state change")
	assert.Contains(t, buf.String(), "state change")
	assert.Contains(t, buf.String(), "DBG")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
