package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/dukerupert/dutyroster/internal/config"
	"github.com/dukerupert/dutyroster/internal/database"
	"github.com/dukerupert/dutyroster/internal/logging"
	"github.com/dukerupert/dutyroster/internal/scheduler"
	"github.com/dukerupert/dutyroster/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dutyroster: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.StringP("config", "c", "", "path to the YAML config file (default $DUTYROSTER_CONFIG or ./dutyroster.yaml)")
		addr       = flag.String("addr", "", "listen address, overrides server.addr")
		dbPath     = flag.String("db", "", "SQLite database path, overrides database.path")
		logLevel   = flag.String("log-level", "", "debug, info, warn or error, overrides log.level")
		once       = flag.Bool("once", false, "stage the current week and today, then exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	logger.Info("database ready", "path", cfg.Database.Path)

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Dispatcher().Wait()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Seed(ctx); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	sched, err := scheduler.New(srv.Stager(), scheduler.Config{
		WeeklySpec: cfg.Cron.Weekly,
		DailySpec:  cfg.Cron.Daily,
		Location:   loc,
		RunOnStart: cfg.Cron.RunOnStart,
	}, logger.With("component", "scheduler"))
	if err != nil {
		return err
	}

	if *once {
		_, weekErr := sched.RunWeekly(ctx)
		_, dayErr := sched.RunDaily(ctx)
		return errors.Join(weekErr, dayErr)
	}

	if cfg.Cron.Enabled {
		sched.Start(ctx)
		defer sched.Stop()
	} else {
		logger.Info("staging scheduler disabled")
	}

	go srv.RateLimiter().RunCleanup(ctx, 5*time.Minute)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("dutyroster listening", "addr", cfg.Server.Addr, "base_url", cfg.Server.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	return nil
}
