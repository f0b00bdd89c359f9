package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"schemaguard/api"
	"schemaguard/config"
	"schemaguard/internal/catalog"
	"schemaguard/internal/database"
	"schemaguard/internal/jsonschema"
	"schemaguard/internal/logger"
	"schemaguard/internal/validation"
)

func main() {
	fmt.Println("Schema Guard starting...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Store
	var store database.SchemaStore

	switch cfg.Storage.Type {
	case "file":
		slog.Info("Using File Store (Local Mode)", "path", cfg.Storage.File.Path)
		fileStore, err := database.NewFileStore(cfg.Storage.File.Path)
		if err != nil {
			log.Fatalf("Failed to initialize file store: %v", err)
		}
		store = database.NewCachingSchemaStore(fileStore)
	case "mongodb":
		slog.Info("Using MongoDB Store", "database", cfg.Storage.MongoDB.DatabaseName)
		mongoStore, err := database.NewMongoStore(ctx, cfg.Storage.MongoDB.ConnectionString, cfg.Storage.MongoDB.DatabaseName)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoStore.Close(context.Background())
		store = database.NewCachingSchemaStore(mongoStore)
	default:
		log.Fatalf("Unknown storage type %q", cfg.Storage.Type)
	}

	// 3. Initialize Services
	validator := validation.NewJSONSchemaValidator(jsonschema.WithMetaValidation(cfg.Validation.MetaValidation))
	service := catalog.NewService(store, validator, cfg.Validation.BatchConcurrency)

	if err := service.SeedSchemas(ctx, cfg.Validation.SeedDir); err != nil {
		log.Fatalf("Failed to seed schemas: %v", err)
	}

	// 4. Initialize API
	apiInstance := api.NewAPI()
	api.NewSchemaHandlers(apiInstance.Huma, store, service)
	api.NewValidateHandlers(apiInstance.Huma, service)

	if err := api.EnhanceDocumentation(ctx, apiInstance.Huma, store, cfg.Validation.DocsDir); err != nil {
		slog.Warn("Failed to enhance documentation", "error", err)
	}

	// 5. Start Server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Server listening", "addr", addr)
	if err := apiInstance.Start(ctx, addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
