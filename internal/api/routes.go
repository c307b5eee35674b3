package api

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Holy623/psa-pop-tracker/internal/api/handlers"
	"github.com/Holy623/psa-pop-tracker/internal/metrics"
	"github.com/Holy623/psa-pop-tracker/internal/models"
	"github.com/Holy623/psa-pop-tracker/internal/services"
	"github.com/Holy623/psa-pop-tracker/internal/store"
)

// SetupRouter builds the dashboard API.
func SetupRouter(
	tracker *services.Tracker,
	sessions *services.SessionRegistry,
	populations *store.HistoryStore[models.PopulationRecord],
	prices *store.HistoryStore[float64],
	detector *services.ChangeDetector,
	trends *services.TrendAggregator,
) *gin.Engine {
	router := gin.Default()
	router.Use(metricsMiddleware())

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(config))

	lookupHandler := handlers.NewLookupHandler(tracker, sessions)
	historyHandler := handlers.NewHistoryHandler(populations, prices, detector, trends)

	api := router.Group("/api")
	{
		api.POST("/lookup", lookupHandler.Lookup)
		api.GET("/lookup/recent", lookupHandler.RecentResult)
		api.GET("/session", lookupHandler.GetSession)

		api.GET("/items", historyHandler.GetItems)
		api.GET("/history", historyHandler.GetHistory)
		api.GET("/changes", historyHandler.GetChanges)

		trendRoutes := api.Group("/trends")
		{
			trendRoutes.GET("/population", historyHandler.GetTopPopulation)
			trendRoutes.GET("/growth", historyHandler.GetTopGrowth)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// metricsMiddleware records request counts and latency per route.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
