// Command calllog-export fetches the current call log and writes it to an
// Excel workbook for offline review.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/samodrei/telecaller/internal/config"
	"github.com/samodrei/telecaller/internal/export"
	"github.com/samodrei/telecaller/pkg/telecall"
)

func main() {
	envFile := flag.String("env", ".env", "Path to dotenv file (optional)")
	out := flag.String("out", "call-log.xlsx", "Output workbook path")
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	client := telecall.NewClient(
		telecall.WithBaseURL(cfg.APIBaseURL),
		telecall.WithTimeout(cfg.RequestTimeout),
		telecall.WithLogger(logger),
	)
	logs := client.Logs()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if err := logs.Refresh(ctx); err != nil {
		logger.Error("failed to fetch call logs", "error", err)
		os.Exit(1)
	}

	records := logs.Records()
	if err := export.WriteWorkbook(*out, records); err != nil {
		logger.Error("failed to write workbook", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("call log exported", "path", *out, "records", len(records))
}
