// Package main is the entry point for the vrmecanism posing tool.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/banyapon/vrmecanism/internal/config"
	"github.com/banyapon/vrmecanism/internal/game"
	"github.com/banyapon/vrmecanism/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== vrmecanism ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	app, err := game.New(cfg)
	if err != nil {
		logger.Error("failed to create app", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		logger.Error("app error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("app closed normally")
}
