package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkarpenko/campushub/internal/config"
	"github.com/mkarpenko/campushub/internal/database"
	"github.com/mkarpenko/campushub/internal/logging"
	"github.com/mkarpenko/campushub/internal/mongodb"
	"github.com/mkarpenko/campushub/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("CAMPUSHUB_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Log.Level)

	db, err := database.Open(cfg.SQLite.Path)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	mongoDB, err := mongodb.Connect(ctx, cfg.Mongo)
	cancel()
	if err != nil {
		logger.Error("connect mongo", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Client().Disconnect(context.Background())

	srv := server.New(db, mongoDB, cfg, logger)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = srv.EnsureIndexes(ctx)
	cancel()
	if err != nil {
		logger.Error("ensure indexes", "error", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if mgr := srv.BackupManager(); mgr.Enabled() {
		mgr.Start(rootCtx)
		defer mgr.Stop()
	}

	// Evict stale rate limit windows in the background.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("campushub listening", "addr", cfg.HTTP.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-rootCtx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
