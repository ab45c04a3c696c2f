package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFieldsAndCaller(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").With(String("comp", "test"))

	log.Info("drawn", Int("winners", 3), Err(errors.New("boom")))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "drawn", m["message"])
	assert.Equal(t, "test", m["comp"])
	assert.EqualValues(t, 3, m["winners"])
	assert.Equal(t, "boom", m["err"])
	assert.Contains(t, m["caller"], "logging_test.go:")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")

	log.Info("hidden")
	assert.Zero(t, buf.Len())
	assert.False(t, log.Enabled(LevelInfo))
	assert.True(t, log.Enabled(LevelError))
}

func TestZeroLoggerIsNoop(t *testing.T) {
	var log Logger
	assert.True(t, log.IsZero())
	log.Error("nothing happens")
	assert.False(t, Nop().IsZero())
}

func TestParseLevelFallsBack(t *testing.T) {
	assert.Equal(t, LevelWarn, parseLevel("warning", LevelInfo))
	assert.Equal(t, LevelInfo, parseLevel("loud", LevelInfo))
}
