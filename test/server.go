package test

import (
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/mediaforge/mediaforge/internal/events"
	"github.com/mediaforge/mediaforge/internal/services"
	"github.com/mediaforge/mediaforge/pkg/api/v1/client"
	"github.com/mediaforge/mediaforge/pkg/api/v1/handlers"
	"github.com/mediaforge/mediaforge/pkg/api/v1/middleware"
	"github.com/mediaforge/mediaforge/pkg/api/v1/routes"
)

// testClientTimeout is the timeout for test API client requests
const testClientTimeout = 5 * time.Second

// testPollInterval keeps background finalization fast in tests
const testPollInterval = 5 * time.Millisecond

// SetupServer configures the test suite with a real API server
func SetupServer(suite *Suite) {
	suite.App = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	suite.App.Use(middleware.Logger())

	// Drain lifecycle events published by the services under test.
	events.Start(suite.ctx)

	// Create services
	assetService := services.NewAssetService(suite.AssetRepo, suite.Store)
	jobService := services.NewJobService(suite.JobRepo)
	suite.Generation = services.NewGenerationService(suite.JobRepo, suite.Store, suite.Backend, services.GenerationConfig{
		PollInterval: testPollInterval,
		PollTimeout:  DefaultTestTimeout,
		Workers:      2,
	})
	suite.Generation.Start(suite.ctx)

	// Create handlers and register routes
	routes.RegisterRoutes(suite.App,
		handlers.NewAssetHandler(assetService),
		handlers.NewGenerateHandler(suite.Generation),
		handlers.NewJobHandler(jobService),
	)

	// Create test server using adaptor to convert Fiber app to http.Handler
	suite.Server = httptest.NewServer(adaptor.FiberApp(suite.App))

	// Create API client with test configuration
	apiClient, err := client.NewClient(&client.Options{
		BaseURL: suite.Server.URL,
		Timeout: testClientTimeout,
	})
	suite.Require().NoError(err, "Failed to create API client")
	suite.APIClient = apiClient
}
