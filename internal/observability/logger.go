package observability

import (
	"github.com/danmuck/cqlcell/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger builds the logger for app from cfg and installs it as the
// global logger.
func InitLogger(app string, cfg logging.Config) zerolog.Logger {
	logger := logging.New(cfg).With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
