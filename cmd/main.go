package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricing-service/internal/config"
	"pricing-service/internal/distance"
	"pricing-service/internal/handlers"
	"pricing-service/internal/kinesis"
	"pricing-service/internal/pricing"
	"pricing-service/internal/resolver"
	"pricing-service/internal/service"
	"pricing-service/internal/source"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	kinesisService "github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured JSON logging
	var logOutput io.Writer = os.Stdout
	if cfg.Log.File != "" {
		logOutput = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Initialize pricing source based on configuration
	pricingSource, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize pricing source", "source", cfg.Pricing.Source, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	pricingResolver := resolver.NewResolver(pricingSource, resolver.NewCache(cfg.Pricing.CacheTTL), pricing.DefaultPricingConfig())
	pricingResolver.SetFetchTimeout(cfg.Pricing.FetchTimeout)

	quoteService := service.NewQuoteService(pricingResolver)

	// Initialize distance estimation
	var estimator distance.Estimator
	if cfg.Maps.APIKey != "" {
		mapsEstimator, err := distance.NewMapsEstimator(cfg.Maps.APIKey)
		if err != nil {
			slog.Warn("Failed to create maps client, using straight-line distance", "error", err)
		} else {
			estimator = mapsEstimator
			slog.Info("Google Maps distance estimation enabled")
		}
	}
	var dispatch *distance.Location
	base := distance.Location{Address: cfg.Maps.DispatchAddress, Lat: cfg.Maps.DispatchLat, Lng: cfg.Maps.DispatchLng}
	if !base.IsZero() {
		dispatch = &base
	}
	quoteService.SetDistanceCalculator(distance.NewCalculator(estimator), dispatch)

	// Initialize Kinesis streamer if stream name is provided
	if streamName := cfg.Kinesis.QuoteEventsStream; streamName != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			slog.Warn("Failed to load AWS config for Kinesis", "error", err)
		} else {
			kinesisClient := kinesisService.NewFromConfig(awsCfg)
			quoteService.SetKinesisStreamer(kinesis.NewStreamer(kinesisClient, streamName))
			slog.Info("Kinesis quote event streaming enabled", "stream", streamName)
		}
	}

	// Keep the pricing cache warm
	refresher := resolver.NewRefresher(pricingResolver, cfg.Pricing.RefreshInterval)
	refresher.Start()
	defer refresher.Stop()

	// Initialize HTTP handlers
	httpHandler := handlers.NewHTTPHandler(quoteService)

	// Setup routes
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Use path prefix if running behind load balancer
	if cfg.HTTP.PathPrefix != "" {
		pricingRouter := router.PathPrefix(cfg.HTTP.PathPrefix).Subrouter()
		httpHandler.RegisterRoutes(pricingRouter)
	} else {
		httpHandler.RegisterRoutes(router)
	}

	router.Use(handlers.MetricsMiddleware)
	// Add CORS middleware for frontend
	router.Use(corsMiddleware)

	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("Pricing Service starting", "port", cfg.HTTP.Port, "pricing_source", pricingSource.Name())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Pricing Service failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-c
	slog.Info("Pricing Service shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// newSource builds the configured pricing source and a func releasing its client
func newSource(ctx context.Context, cfg config.Config) (source.Source, func(), error) {
	noop := func() {}

	switch cfg.Pricing.Source {
	case config.SourceHTTP:
		slog.Info("Using HTTP pricing source", "url", cfg.Pricing.URL)
		return source.NewHTTPSource(cfg.Pricing.URL, cfg.Pricing.FetchTimeout), noop, nil

	case config.SourceDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to load AWS config: %w", err)
		}
		dynamoClient := dynamodb.NewFromConfig(awsCfg)
		dynamoSource := source.NewDynamoDBSource(dynamoClient, cfg.DynamoDB.Table, cfg.DynamoDB.Key)
		if cfg.DynamoDB.SeedDefaults {
			seedDynamoDB(ctx, dynamoSource)
		}
		slog.Info("Using DynamoDB pricing source", "table_name", cfg.DynamoDB.Table, "key", cfg.DynamoDB.Key)
		return dynamoSource, noop, nil

	case config.SourceRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// not fatal: quotes fall back until redis is reachable
			slog.Warn("Redis ping failed", "error", err)
		}
		slog.Info("Using Redis pricing source", "key", cfg.Redis.Key)
		return source.NewRedisSource(client, cfg.Redis.Key), func() { client.Close() }, nil

	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		slog.Info("Using PostgreSQL pricing source", "pricing_id", cfg.Postgres.PricingID)
		return source.NewPostgresSource(pool, cfg.Postgres.PricingID), pool.Close, nil

	case config.SourceFirestore:
		docs, err := source.NewFirestoreDocuments(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		slog.Info("Using Firestore pricing source", "document", cfg.Firestore.Document)
		return source.NewFirestoreSource(docs, cfg.Firestore.Document), func() { docs.Close() }, nil

	default:
		slog.Info("Using in-memory pricing source")
		return source.NewMemorySource(pricing.DefaultPricingConfig()), noop, nil
	}
}

// seedDynamoDB writes the default pricing item when the table has none
func seedDynamoDB(ctx context.Context, src *source.DynamoDBSource) {
	_, err := src.Fetch(ctx)
	if !errors.Is(err, source.ErrNotFound) {
		return
	}
	if err := src.Seed(ctx, pricing.DefaultPricingConfig()); err != nil {
		slog.Warn("Failed to seed default pricing item", "error", err)
		return
	}
	slog.Info("Seeded default pricing item")
}

// corsMiddleware adds CORS headers for frontend access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
