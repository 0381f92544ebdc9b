package main

import (
	"os"

	_ "taskmanager/docs"
	"taskmanager/internal/config"
	"taskmanager/internal/server"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// @title           Task Manager API
// @version         1.0
// @description     CRUD task tracking with subtasks, soft delete and restore.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @tag.name Tasks
// @tag.description Task lifecycle, queries and recycle bin

// @tag.name Health
// @tag.description Storage reachability

// @schemes http
func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	defer func() {
		if err := logger.Sync(); err != nil {
			zap.L().Debug("failed to sync logger", zap.Error(err))
		}
	}()
	logConfig(logger, cfg)

	s, err := server.Init(cfg)
	if err != nil {
		logger.Error("server initialization failed", zap.Error(err))
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

// logConfig reports what config.Load saw, once a logger exists.
func logConfig(logger *zap.Logger, cfg *config.Config) {
	if !cfg.EnvFileLoaded {
		logger.Info("no .env file found, using system environment variables")
	}
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
