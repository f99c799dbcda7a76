package testlog

import (
	"testing"

	"github.com/danmuck/cqlcell/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Start installs the test logging profile and returns a logger tagged with
// the test name. The outcome is logged when the test finishes.
func Start(tb testing.TB) zerolog.Logger {
	tb.Helper()
	logging.ConfigureTests()
	logger := log.With().Str("test", tb.Name()).Logger()
	logger.Debug().Msg("start")
	tb.Cleanup(func() {
		logger.Debug().Bool("failed", tb.Failed()).Msg("finish")
	})
	return logger
}
