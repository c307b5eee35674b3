package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/Holy623/psa-pop-tracker/internal/api"
	"github.com/Holy623/psa-pop-tracker/internal/models"
	"github.com/Holy623/psa-pop-tracker/internal/services"
	"github.com/Holy623/psa-pop-tracker/internal/sources"
	"github.com/Holy623/psa-pop-tracker/internal/store"
)

func main() {
	// Data directory for the history documents
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Open the three persisted documents
	populations, err := store.OpenHistoryStore[models.PopulationRecord](filepath.Join(dataDir, "pop_history.json"))
	if err != nil {
		log.Fatalf("Failed to open population history: %v", err)
	}
	prices, err := store.OpenHistoryStore[float64](filepath.Join(dataDir, "price_history.json"))
	if err != nil {
		log.Fatalf("Failed to open price history: %v", err)
	}
	images, err := store.OpenImageCache(filepath.Join(dataDir, "image_cache.json"))
	if err != nil {
		log.Fatalf("Failed to open image cache: %v", err)
	}
	log.Printf("Tracking %d items from %s", len(populations.Items()), dataDir)

	// Outbound scrape rate, requests per second across all sources
	scrapeRate := 1.0
	if rateStr := os.Getenv("SCRAPE_RATE_PER_SECOND"); rateStr != "" {
		if parsed, err := strconv.ParseFloat(rateStr, 64); err == nil && parsed > 0 {
			scrapeRate = parsed
		}
	}
	client := sources.NewClient()
	limiter := rate.NewLimiter(rate.Limit(scrapeRate), 3)

	popSources := []sources.PopulationSource{
		sources.NewPSASource(client, limiter),
		sources.NewCGCSource(client, limiter),
		sources.NewSGCSource(client, limiter),
	}
	ebay := sources.NewEbaySource(client, limiter)

	// Core services
	detector := services.NewChangeDetector(populations)
	trends := services.NewTrendAggregator(populations)
	tracker := services.NewTracker(popSources, ebay, populations, prices, images, detector)
	sessionRegistry := services.NewSessionRegistry()

	// Setup router
	router := api.SetupRouter(tracker, sessionRegistry, populations, prices, detector, trends)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
