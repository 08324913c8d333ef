/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the fee ledger server: configuration, logging,
  store, school configuration, facade, router, graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and environment configuration
  2. Configure slog (json or text, level from LOG_LEVEL)
  3. Open the SQLite store
  4. Load the school configuration JSON (fee schedules, allowed values)
  5. Wire the ledger facade and HTTP router
  6. Serve with graceful shutdown on SIGINT/SIGTERM

FLAGS:
  -config  Path to the school configuration JSON (overrides SCHOOL_CONFIG)
  -db      SQLite database path (overrides DB_PATH); ":memory:" works

ENVIRONMENT:
  PORT, DB_PATH, SCHOOL_CONFIG, SCHEDULE_FALLBACK, LOG_LEVEL, LOG_FORMAT
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brightpath/fee-engine/api"
	"github.com/brightpath/fee-engine/config"
	"github.com/brightpath/fee-engine/ledger"
	"github.com/brightpath/fee-engine/schedule"
	"github.com/brightpath/fee-engine/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	schoolPath := flag.String("config", cfg.School.ConfigPath, "school configuration JSON path")
	dbPath := flag.String("db", cfg.DB.Path, "SQLite database path")
	flag.Parse()

	logger := newLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	st, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	school, err := schedule.Load(*schoolPath)
	if err != nil {
		logger.Error("load school config", "err", err)
		os.Exit(1)
	}

	var schedules ledger.FeeScheduleProvider = school.Provider()
	if cfg.School.ScheduleFallback {
		schedules = schedule.WithFallback(schedules, logger)
	}

	facade := ledger.NewFacade(schedules, school, school.BaseStudentType, logger)
	handler := api.NewHandler(st, facade, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "app", cfg.App.Name, "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "err", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Leveler {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
