package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"report-moderation/config"
	"report-moderation/middleware"
	"report-moderation/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Set log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create service
	svc, err := service.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to create service:", err)
	}

	// Start service
	if err := svc.Start(); err != nil {
		log.Fatal("Failed to start service:", err)
	}

	// Setup HTTP server
	router := setupRouter(svc, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := svc.Stop(); err != nil {
		log.Printf("Error stopping service: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func setupRouter(svc *service.Service, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// Add gzip compression middleware
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	h := svc.GetHandlers()
	operatorAuth := middleware.OperatorAuth(cfg.JWTSecret)

	// API routes
	api := router.Group("/api/v1")
	{
		// Report submission from mobile clients (unauthenticated)
		api.POST("/reports", h.SubmitReport)

		// Health check endpoint
		api.GET("/reports/health", h.HealthCheck)

		// Dashboard surface (operator JWT)
		api.GET("/reports", operatorAuth, h.GetReports)
		api.GET("/reports/listen", operatorAuth, h.ListenReports)
		api.POST("/reports/review", operatorAuth, h.ReviewReport)
	}

	// Stored attachments are public by retrieval path
	router.Static("/uploads", svc.Store().Dir())

	// Root health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "report-moderation",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	return router
}
