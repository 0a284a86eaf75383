package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Debug().Str("component", "test").Msg("hello")

	assert.Contains(t, buf.String(), `"component":"test"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Msg("dropped")
	Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestWith_ChildLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	child := With().Str("component", "corpus").Logger()
	child.Info().Msg("loaded")

	assert.Contains(t, buf.String(), `"component":"corpus"`)
}
