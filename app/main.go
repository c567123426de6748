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

	"github.com/serrrfirat/xmarks/app/api"
	"github.com/serrrfirat/xmarks/app/bird"
	"github.com/serrrfirat/xmarks/app/cfg"
	"github.com/serrrfirat/xmarks/app/claude"
	"github.com/serrrfirat/xmarks/app/classify"
	"github.com/serrrfirat/xmarks/app/database"
	"github.com/serrrfirat/xmarks/app/syncer"
	"github.com/serrrfirat/xmarks/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appConfig, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appConfig.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	log.Printf("Starting xmarks server (version %s)...", appConfig.Version)

	// Database connection
	log.Printf("Opening database at %s...", appConfig.DBPath)
	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready (schema version %d, dirty: %v)", version, dirty)

	// Repositories
	postRepo := database.NewPostRepository(db)
	categoryRepo := database.NewCategoryRepository(db)
	syncStateRepo := database.NewSyncStateRepository(db)
	classifyStateRepo := database.NewClassificationStateRepository(db)

	// External tool adapters
	birdClient := bird.NewClient(appConfig.BirdPath, bird.NewRunner())
	claudeClient := claude.NewClient(appConfig.ClaudePath)

	if birdClient.CheckAuth(context.Background()) {
		log.Printf("bird CLI authenticated")
	} else {
		log.Printf("Warning: bird CLI not authenticated; sync will fail until you log in to X in Safari")
	}

	// Orchestrators
	bookmarkSyncer := syncer.NewSyncer(birdClient, postRepo, syncStateRepo)
	threads := syncer.NewThreads(birdClient, postRepo)
	classifier := classify.NewClassifier(claudeClient, postRepo, categoryRepo,
		classifyStateRepo, appConfig.BatchSize)

	// Background task scheduler
	log.Printf("Starting background scheduler with %d workers...", appConfig.WorkerCount)
	scheduler := tasks.NewScheduler(appConfig.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	apiHandler := api.NewHandler(postRepo, categoryRepo, syncStateRepo, classifyStateRepo,
		bookmarkSyncer, threads, classifier, scheduler)
	server := api.NewServer(apiHandler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("xmarks server started successfully!")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("xmarks server shutdown complete")
}
