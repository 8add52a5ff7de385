package logger

import "go.uber.org/zap"

// New builds the service logger. Production config for deployed
// environments, human-readable development config otherwise.
func New(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
