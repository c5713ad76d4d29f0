package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/samodrei/telecaller/internal/config"
	"github.com/samodrei/telecaller/internal/web"
	"github.com/samodrei/telecaller/pkg/telecall"
)

func main() {
	envFile := flag.String("env", ".env", "Path to dotenv file (optional)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		slog.Error("failed to load env file", "path", *envFile, "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	client := telecall.NewClient(
		telecall.WithBaseURL(cfg.APIBaseURL),
		telecall.WithWSBaseURL(cfg.WSBaseURL),
		telecall.WithTimeout(cfg.RequestTimeout),
		telecall.WithLogger(logger),
	)
	dash := telecall.NewDashboard(client)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dash.Start(ctx); err != nil {
		logger.Error("failed to start dashboard", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: web.New(dash, logger, cfg.RequestTimeout).Handler(),
	}

	go func() {
		logger.Info("dashboard listening", "addr", cfg.Addr, "backend", cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	dash.Shutdown()
}

func setupLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
