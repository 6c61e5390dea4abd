// Package logger builds the process-wide zap logger. Components receive the
// sugared logger explicitly instead of importing this package themselves.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	instance *zap.SugaredLogger
	once     sync.Once
)

type Config struct {
	Development bool
	Level       string // debug|info|warn|error, empty means info
}

func New(cfg Config) (*zap.SugaredLogger, error) {
	var err error
	once.Do(func() {
		level := zapcore.InfoLevel
		if cfg.Level != "" {
			if err = level.Set(cfg.Level); err != nil {
				return
			}
		}

		var zc zap.Config
		if cfg.Development {
			zc = zap.NewDevelopmentConfig()
		} else {
			zc = zap.NewProductionConfig()
		}
		zc.Level = zap.NewAtomicLevelAt(level)

		var l *zap.Logger
		l, err = zc.Build()
		if err != nil {
			return
		}
		instance = l.Sugar()
	})
	return instance, err
}
