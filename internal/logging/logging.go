package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelFor переводит количество флагов -v в уровень логирования
func LevelFor(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetupLogger настраивает глобальный логгер: консоль в stderr, уровень по verbosity
func SetupLogger(verbosity int) {
	SetupLoggerTo(os.Stderr, verbosity)
}

// SetupLoggerTo — то же, но с произвольным выводом
func SetupLoggerTo(out io.Writer, verbosity int) {
	zerolog.SetGlobalLevel(LevelFor(verbosity))

	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    out != os.Stderr,
	}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()

	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}
	log.Debug().Int("verbosity", verbosity).Msg("Логгер настроен")
}

// GetLogger возвращает логгер с полем component
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
