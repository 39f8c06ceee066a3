package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"memorize/internal/config"
	"memorize/internal/engine"
	"memorize/internal/logger"
	"memorize/internal/server"
	"memorize/internal/session"
	"memorize/internal/tui"
)

//go:embed web/static
var static embed.FS

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TUI {
		// The alt screen owns stdout; keep logs out of it.
		logger.Setup("error", os.Stderr)
		s := session.NewSession("terminal", session.Settings{
			Pairs:          cfg.Pairs,
			Content:        cfg.Content,
			BonusTimeLimit: cfg.BonusTime,
			Seed:           cfg.Seed,
			Clock:          engine.SystemClock{},
		})
		if err := tui.Run(ctx, s.Deal); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	log := logger.Setup(cfg.LogLevel, os.Stderr)
	srv := server.New(cfg, static, log)
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
