package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, LevelFor(0))
	assert.Equal(t, zerolog.InfoLevel, LevelFor(1))
	assert.Equal(t, zerolog.DebugLevel, LevelFor(2))
	assert.Equal(t, zerolog.TraceLevel, LevelFor(5))
}

func TestSetupLoggerTo(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	SetupLoggerTo(&buf, 0)
	l := GetLogger("render")
	l.Info().Msg("не видно")
	l.Warn().Msg("ячейка очищена")

	out := buf.String()
	assert.NotContains(t, out, "не видно")
	assert.Contains(t, out, "ячейка очищена")
	assert.Contains(t, out, "component=render")
}
