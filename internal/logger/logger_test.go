package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for input, want := range tests {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func decode(t *testing.T, line []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(line, &out))
	return out
}

func TestZerologAdapterFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.DebugLevel).With("session", "abc")

	log.Info("Codec", "image loaded", map[string]interface{}{"width": 64})
	entry := decode(t, buf.Bytes())
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Codec", entry["component"])
	assert.Equal(t, "image loaded", entry["message"])
	assert.Equal(t, "abc", entry["session"])
	assert.EqualValues(t, 64, entry["width"])

	buf.Reset()
	log.Error("Session", errors.New("boom"), nil)
	entry = decode(t, buf.Bytes())
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "operation failed", entry["message"])
	assert.Equal(t, "Session", entry["component"])
	assert.Equal(t, "abc", entry["session"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)

	log.Debug("Test", "hidden", nil)
	log.Info("Test", "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warning("Test", "shown", nil)
	assert.Contains(t, buf.String(), `"level":"warn"`)

	NewNop().Error("Test", errors.New("dropped"), nil)
}
