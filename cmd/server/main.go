package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lfarias/imc-wellness/internal/config"
	"github.com/lfarias/imc-wellness/internal/handlers"
)

var (
	Version   string = "dev"
	Commit    string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showHelp {
		fmt.Printf("IMC Wellness Server\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  GEMINI_API_KEY        Gemini API key (tips disabled when unset)\n")
		fmt.Printf("  GEMINI_MODEL          Gemini model selector\n")
		fmt.Printf("  PORT                  Server port (default: 8080)\n")
		fmt.Printf("  HOST                  Server host (default: 0.0.0.0)\n")
		fmt.Printf("  CACHE_TYPE            Cache type: memory or cloud-storage (default: memory)\n")
		fmt.Printf("  CACHE_BUCKET          GCS bucket for the cloud-storage cache\n")
		fmt.Printf("  TIP_WARMUP_SCHEDULE   Cron spec for tip pre-generation (empty disables)\n")
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("IMC Wellness Server\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create server
	server, err := handlers.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer server.Close()

	// Setup routes
	router := server.SetupRoutes()

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schedule tip warmup so user requests hit the cache
	c := cron.New()
	if cfg.TipWarmupSchedule != "" {
		_, err := c.AddFunc(cfg.TipWarmupSchedule, func() {
			log.Println("🕐 Scheduled tip warmup starting")
			if err := server.WarmupTips(ctx); err != nil {
				log.Printf("❌ Scheduled tip warmup failed: %v", err)
			} else {
				log.Println("✅ Scheduled tip warmup completed")
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule tip warmup (%q): %v", cfg.TipWarmupSchedule, err)
		}
		log.Printf("📅 Scheduled tip warmup with cron: %s", cfg.TipWarmupSchedule)

		c.Start()
		defer c.Stop()

		// Warm the cache once at startup as well
		go func() {
			if err := server.WarmupTips(ctx); err != nil {
				log.Printf("Initial tip warmup failed: %v", err)
			}
		}()
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server
	go func() {
		log.Printf("🚀 Starting server on %s:%s", cfg.Host, cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("🛑 Shutting down server...")

	// Cancel background tasks
	cancel()
	c.Stop()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Server stopped")
}
