package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := Build(Config{Level: "warn"}, &buf)

	log.Info().Msg("hidden")
	log.Warn().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestBuildDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := Build(Config{Level: "bogus"}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}
