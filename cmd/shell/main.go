package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ramitgoyal/zensync/internal/shell"
)

func main() {
	binary := flag.String("backend", "zensync-server", "path to the backend binary")
	port := flag.Int("port", 5000, "port the backend listens on")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	spawner := shell.NewSpawner(*binary, flag.Args(), *port, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := spawner.Start(ctx); err != nil {
		logger.Error("failed to start backend", "error", err)
		os.Exit(1)
	}

	// Relay termination signals so the backend shuts down gracefully.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Info("forwarding signal to backend", "signal", sig.String())
		_ = spawner.Signal(sig)
	}()

	os.Exit(spawner.Wait())
}
