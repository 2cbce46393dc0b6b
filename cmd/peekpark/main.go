package main

import (
	"os"

	"github.com/peekpark/peekpark/internal/app"
	"github.com/peekpark/peekpark/internal/config"
	"github.com/peekpark/peekpark/internal/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)
	if err := app.Run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("app failed")
		os.Exit(1)
	}
}
