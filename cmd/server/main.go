package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/labelsort/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		slog.Error("server init failed", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		srv.logger().Error("server start failed", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	srv.logger().Info("signal received", "signal", sig.String())
	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		srv.logger().Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	srv.logger().Info("labelsort stopped")
}
