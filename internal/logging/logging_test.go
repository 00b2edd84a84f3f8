package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_levels(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("debug", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New("warn", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("loud", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("", &bytes.Buffer{}).GetLevel())
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	log := WithRun(zerolog.New(&buf), "run-1")
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"run_id":"run-1"`)
}

func TestNew_plainOutputOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf)
	log.Info().Int("batch", 1).Msg("Ingesting products batch 1 containing 3 products")
	out := buf.String()
	assert.Contains(t, out, "Ingesting products batch 1 containing 3 products")
	assert.Contains(t, out, "batch=1")
	assert.NotContains(t, out, "\x1b[")
}
