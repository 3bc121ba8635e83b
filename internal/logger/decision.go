package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewDecisionLogger returns the logger of the access decision audit trail.
// The trail is written to the decision log file and, when the console is enabled, to stdout.
// A disabled trail returns a no-op logger.
func NewDecisionLogger(cfg Log) zerolog.Logger {
	if !cfg.Decisions.Enabled {
		return zerolog.Nop()
	}

	var writers []io.Writer

	if cfg.File.Enabled && cfg.File.DecisionLog != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil { //nolint: mnd
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")
		} else {
			f := cfg.File
			writers = append(writers, newRollingFile(f.Path, f.DecisionLog, f.DecisionMaxSize, f.DecisionMaxAge, f.DecisionMaxBackups))
		}
	}

	if cfg.Console.Enabled {
		writers = append(writers, os.Stdout)
	}

	if len(writers) == 0 {
		return zerolog.Nop()
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("log", "decision").
		Logger()
}
