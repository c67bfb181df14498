package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramitgoyal/zensync/internal/api"
	"github.com/ramitgoyal/zensync/internal/auth"
	"github.com/ramitgoyal/zensync/internal/config"
	"github.com/ramitgoyal/zensync/internal/session"
	"github.com/ramitgoyal/zensync/internal/store"
)

func main() {
	// Logger
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// SQLite
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Stores
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)

	// Auth
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(userStore, tokens, logger)

	// Session lifecycle: reloads a persisted in-progress session on boot.
	controller, err := session.NewController(sessionStore, logger)
	if err != nil {
		logger.Error("failed to init session controller", "error", err)
		os.Exit(1)
	}

	// Background tick, stopped with the server. Clients poll elapsed time
	// over REST; the server-side tick exists for debug visibility.
	tickCtx, stopTick := context.WithCancel(context.Background())
	defer stopTick()
	go controller.Run(tickCtx, func(elapsed int) {
		logger.Debug("session tick", "elapsed_sec", elapsed)
	})

	// Router
	router := api.NewRouter(db, sessionStore, controller, authSvc, tokens, cfg.CORSOrigin, cfg.SecureCookies, logger)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")
	stopTick()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
