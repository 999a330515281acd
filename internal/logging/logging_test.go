package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_JSON(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer
	Setup(&buf, "warn", true)

	log.Info().Msg("hidden")
	log.Warn().Str("session", "abc").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "abc", line["session"])
	assert.Contains(t, line, "time")
}

func TestSetup_Console(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer
	Setup(&buf, "DEBUG", false)

	log.Debug().Msg("visible at debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Contains(t, buf.String(), "visible at debug")
	assert.NotContains(t, buf.String(), "\x1b[", "no colour for non-terminals")
}

func TestIsTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	assert.False(t, isTerminal(w), "pipes are not terminals")
	assert.False(t, isTerminal(&bytes.Buffer{}))
}

func TestSetup_UnknownLevel(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer
	Setup(&buf, "chatty", true)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.Contains(t, buf.String(), "Unknown log level")
}
