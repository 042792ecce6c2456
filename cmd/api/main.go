package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/ecashph/ecash/internal/api"
	"github.com/ecashph/ecash/internal/auth"
	"github.com/ecashph/ecash/internal/clock"
	"github.com/ecashph/ecash/internal/config"
	"github.com/ecashph/ecash/internal/mail"
	"github.com/ecashph/ecash/internal/service"
	"github.com/ecashph/ecash/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := store.NewStore(cfg.DBSource, logger)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	clk := clock.Real()
	tokens := auth.NewTokens(cfg.JWTSecret)
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	handler := api.NewHandler(
		service.NewDisbursementService(db, clk, logger),
		service.NewPayeeService(db, clk, logger),
		service.NewFundService(db, clk, logger),
		service.NewLogService(db),
		service.NewAuthService(db, tokens, mailer, clk, logger),
		service.NewReportService(db),
		logger,
	)

	logger.Info("server starting", "port", cfg.Port, "env", cfg.Env)
	if err := http.ListenAndServe(":"+cfg.Port, handler.Router()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Env == "development" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
