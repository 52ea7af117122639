// Command play runs one memory-match game in the terminal.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/pairs/internal/config"
	"github.com/phrazzld/pairs/internal/platform/logger"
	"github.com/phrazzld/pairs/internal/play"
)

func main() {
	cfg, err := play.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	// stdout belongs to the board
	appLogger, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: cfg.LogLevel}, os.Stderr)
	if err != nil {
		log.Fatalf("set up logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := play.Run(ctx, cfg, os.Stdin, os.Stdout, appLogger); err != nil {
		stop()
		log.Fatalf("play: %v", err)
	}
}
