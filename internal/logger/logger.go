package logger

import (
	"go.uber.org/zap"

	"github.com/lexibox/lexibox/internal/config"
)

func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "prod" {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
