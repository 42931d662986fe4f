package app

import (
	"log/slog"

	"github.com/palasimi/colexification-graphs/internal/config"
)

// Setup is the common entry point of every command. It loads configuration
// from path (empty for defaults), initializes the logger, and logs startup
// information.
func Setup(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	logger := NewLogger(cfg.Log)

	logger.Debug("starting colexify",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("sense_policy", cfg.Extract.SensePolicy),
	)

	return cfg, logger, nil
}
