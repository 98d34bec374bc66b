package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedscout/feedscout/app/api"
	"github.com/feedscout/feedscout/app/cfg"
	"github.com/feedscout/feedscout/app/crawler"
	"github.com/feedscout/feedscout/app/database"
	"github.com/feedscout/feedscout/app/httpclient"
	"github.com/feedscout/feedscout/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting FeedScout server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	httpClient := httpclient.New(appCfg.UserAgent, time.Duration(appCfg.Timeout)*time.Second)

	feedCrawler := crawler.New(httpClient,
		crawler.WithRetryCount(appCfg.RetryCount),
		crawler.WithRetryDelay(time.Duration(appCfg.RetryDelay)*time.Second),
		crawler.WithProbeFanOut(appCfg.ProbeFanOut),
	)

	if appCfg.ReplacementsFile != "" {
		replacements, err := cfg.LoadReplacements(appCfg.ReplacementsFile)
		if err != nil {
			log.Fatalf("Failed to load URL replacements: %v", err)
		}
		feedCrawler.SetUrlReplacementMap(replacements)
		slog.Info("Loaded URL replacements", "file", appCfg.ReplacementsFile, "count", len(replacements))
	}

	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db)

	scheduler := tasks.NewScheduler()
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background worker pool started", "workers", appCfg.WorkerCount)

	apiHandler := api.NewHandler(feedCrawler, feedRepo, itemRepo, scheduler, appCfg.ExtractContent)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
