package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	fiber "github.com/gofiber/fiber/v2"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mediaforge/mediaforge/config"
	"github.com/mediaforge/mediaforge/internal/compute"
	"github.com/mediaforge/mediaforge/internal/db"
	"github.com/mediaforge/mediaforge/internal/db/repos"
	"github.com/mediaforge/mediaforge/internal/events"
	"github.com/mediaforge/mediaforge/internal/logger"
	"github.com/mediaforge/mediaforge/internal/services"
	"github.com/mediaforge/mediaforge/internal/storage"
	"github.com/mediaforge/mediaforge/pkg/api/v1/handlers"
	"github.com/mediaforge/mediaforge/pkg/api/v1/middleware"
	"github.com/mediaforge/mediaforge/pkg/api/v1/routes"
)

func main() {
	config.LoadEnvFile()
	logger.Initialize()

	database, err := db.New(db.Options{
		Host:       config.GetEnv("DB_HOST", db.DefaultHost),
		User:       config.GetEnv("DB_USER", db.DefaultUser),
		Password:   config.GetEnv("DB_PASSWORD", db.DefaultPassword),
		DBName:     config.GetEnv("DB_NAME", db.DefaultDBName),
		Port:       config.GetEnvInt("DB_PORT", db.DefaultPort),
		SSLEnabled: config.GetEnv("DB_SSL_MODE", "disable") != "disable",
		LogLevel:   gormlogger.Warn,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	store, err := storage.NewClient(config.LoadObjectStoreConfig())
	if err != nil {
		logger.Fatalf("Failed to create object store client: %v", err)
	}

	backend, err := compute.NewClient(config.LoadComputeConfig())
	if err != nil {
		logger.Fatalf("Failed to create compute client: %v", err)
	}

	// Repositories
	jobRepo := repos.NewJobRepository(database)
	assetRepo := repos.NewAssetRepository(database)

	// Services
	assetService := services.NewAssetService(assetRepo, store)
	jobService := services.NewJobService(jobRepo)
	generationService := services.NewGenerationService(jobRepo, store, backend, services.GenerationConfig{
		PollInterval: config.GetEnvDuration("POLL_INTERVAL", services.DefaultPollInterval),
		PollTimeout:  config.GetEnvDuration("POLL_TIMEOUT", services.DefaultPollTimeout),
		Workers:      config.GetEnvInt("FINALIZE_WORKERS", services.DefaultWorkers),
	})

	// Background workers poll the compute backend until jobs settle.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	generationService.Start(ctx)

	events.Start(ctx)
	events.Subscribe(events.EventJobCompleted, func(_ context.Context, e events.Event) error {
		logger.InfoWithFields("job completed event", map[string]interface{}{
			"job_id":     e.JobID,
			"result_url": e.ResultURL,
		})
		return nil
	})
	events.Subscribe(events.EventJobFailed, func(_ context.Context, e events.Event) error {
		logger.WarnWithFields("job failed event", map[string]interface{}{
			"job_id": e.JobID,
			"error":  e.Error,
		})
		return nil
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    config.GetEnvInt("BODY_LIMIT_BYTES", 100*1024*1024),
	})
	app.Use(middleware.Logger())

	routes.RegisterRoutes(app,
		handlers.NewAssetHandler(assetService),
		handlers.NewGenerateHandler(generationService),
		handlers.NewJobHandler(jobService),
	)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Errorf("Server shutdown: %v", err)
		}
	}()

	port := config.GetEnv("PORT", routes.DefaultPort)
	if err := app.Listen(":" + port); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}

	// Let in-flight finalizations drain before exiting.
	generationService.Wait()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
