package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"matchday/config"
	"matchday/database"
	"matchday/llmclient"
	"matchday/rag"
	"matchday/web"

	"go.uber.org/zap"
)

func main() {
	populate := flag.Bool("populate-embeddings", false, "build missing match embeddings and exit")
	flag.Parse()

	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info", true)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel, cfg.DebugMode)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	store, err := database.NewPostgresStore(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	// --- Ensure Schema Exists ---
	if err := store.EnsureSchema(ctx, cfg.EmbeddingDimensions); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	provider := llmclient.New(cfg, logger)
	ragService := rag.New(cfg, provider, store, provider, logger)

	if *populate {
		count, err := ragService.PopulateEmbeddings(ctx, store)
		if err != nil {
			logger.Fatal("Embedding population failed", zap.Int("populated", count), zap.Error(err))
		}
		total, err := store.CountMatchEmbeddings(ctx)
		if err != nil {
			logger.Fatal("Failed to count match embeddings", zap.Error(err))
		}
		logger.Info("Embedding population complete", zap.Int("populated", count), zap.Int("total", total))
		return
	}

	webServer, err := web.NewServer(ragService, store, logger, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize web server", zap.Error(err))
	}

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start web server
	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting Matchday analytics server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
