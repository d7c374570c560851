package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"property-intake/internal/broker"
	"property-intake/internal/catalog"
	"property-intake/internal/config"
	"property-intake/internal/handler"
	"property-intake/internal/pkg/logger"
	"property-intake/internal/repository"
	"property-intake/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Property Intake")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.Logging.FilePath, cfg.Logging.Level, cfg.Logging.IsProd)
	defer appLogger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Broker backend
	cat := catalog.Default()
	var brokerClient broker.Client
	if cfg.Broker.UseMock {
		brokerClient = broker.NewMock(cat.Set(catalog.Set3BHKIndiranagar)).Accept(cat.All()...)
		log.Println("⚠️  Using the in-memory mock broker backend")
	} else {
		brokerClient = broker.NewHTTPClient(cfg.Broker.APIBaseURL, cfg.Broker.Timeout)
		log.Printf("✅ Broker backend: %s", cfg.Broker.APIBaseURL)
	}

	// Session store
	var sessions repository.SessionStore
	if cfg.Redis.Enabled {
		redisClient, err := repository.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		sessions = repository.NewRedisSessionStore(redisClient, cfg.Redis.KeyPrefix, cfg.Session.TTL)
		log.Println("✅ Connected to Redis session store")
	} else {
		sessions = repository.NewMemorySessionStore(cfg.Session.TTL, cfg.Session.CleanupInterval)
		log.Println("⚠️  Redis is disabled - sessions are kept in process memory")
	}

	// Listing repository
	var listings repository.ListingRepository
	if cfg.PostgreSQL.Enabled {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()
		listings = repo
		log.Println("✅ Connected to PostgreSQL database")
	} else {
		repo, err := repository.NewMemoryListingRepository()
		if err != nil {
			log.Fatalf("Failed to load sample listings: %v", err)
		}
		listings = repo
		log.Println("⚠️  PostgreSQL is disabled - serving bundled sample listings")
		log.Println("   Set DATABASE_URL or PG_HOST to use a listings database")
	}

	// Initialize services
	parser := service.NewIntentParser()
	ranker := service.NewRanker(
		cfg.Ranking.WeightCriteria,
		cfg.Ranking.WeightPrice,
		cfg.Ranking.WeightRecency,
	)
	chatService := service.NewChatService(brokerClient, sessions, cat, service.NewEventHub(), appLogger, cfg.Broker.Timeout)
	matchService := service.NewMatchService(listings, sessions, ranker, appLogger)
	leadService := service.NewLeadService(brokerClient, cfg.Broker.DistributionCacheTTL, appLogger)

	log.Println("✅ Services initialized")

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowMethods = strings.Split(cfg.Server.AllowedMethods, ",")
	corsConfig.AllowHeaders = strings.Split(cfg.Server.AllowedHeaders, ",")
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"service":     "property-intake",
			"version":     Version,
			"build_time":  BuildTime,
			"git_commit":  GitCommit,
			"mock_broker": cfg.Broker.UseMock,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/client-config", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"googleMapsApiKey": cfg.Maps.GoogleMapsAPIKey,
				"useMockApi":       cfg.Broker.UseMock,
			})
		})

		handler.NewChatHandler(chatService).Register(apiV1)
		handler.NewListingHandler(matchService, cfg.Search.DefaultLimit, cfg.Search.MaxLimit).Register(apiV1)
		handler.NewEmbeddingHandler(matchService, cfg.Search.EmbeddingDimension).Register(apiV1)
		handler.NewFeedbackHandler(matchService).Register(apiV1)
		handler.NewLeadHandler(leadService).Register(apiV1)
		handler.NewQuestionHandler(cat, parser).Register(apiV1)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API Documentation: http://localhost:%d/api/v1", cfg.Server.Port)
	appLogger.Info("server", "Server starting", map[string]interface{}{"addr": addr})

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server", "Forced shutdown", map[string]interface{}{"error": err.Error()})
	}
	log.Println("✅ Server stopped")
}
