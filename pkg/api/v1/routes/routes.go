// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/mediaforge/mediaforge/pkg/api/v1/handlers"
)

/*

To keep this file organized, routes should be organized in the following way:

1. Smallest scope first (i.e. asset routes before job routes)
2. For similar scopes, put the endpoints in alphabetical order
3. Order routes in GET, POST, PUT, DELETE order.
	a. Within this ordering, param urls (ie /:id) should go last, otherwise fiber will interpret the route slug as that param.
	b. After param considerations, order alphabetically.
4. For clarity, naming should match the action (i.e. GetJob, DeleteAsset)

*/

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Asset routes
	GetAssets    = "GetAssets"
	BrowseAssets = "BrowseAssets"
	GetAsset     = "GetAsset"
	UploadAsset  = "UploadAsset"
	CreateFolder = "CreateFolder"
	DeleteAsset  = "DeleteAsset"

	// Generation routes
	Generate = "Generate"

	// Health check
	HealthCheck = "HealthCheck"

	// Job routes
	GetJobs      = "GetJobs"
	GetJob       = "GetJob"
	GetJobStatus = "GetJobStatus"
)

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// RegisterRoutes configures all the v1 routes
//
// NOTE: route ordering is important because routes will try and match in the order they are registered.
// For example, if we register GetJob before GetJobStatus's path segments, the literal slug could get interpreted as a job ID.
func RegisterRoutes(
	app *fiber.App,
	assetHandler *handlers.AssetHandler,
	generateHandler *handlers.GenerateHandler,
	jobHandler *handlers.JobHandler,
) {
	// API v1 routes
	v1 := app.Group(APIv1Prefix)

	// Asset endpoints
	assets := v1.Group("/assets")
	assets.Get("/", assetHandler.ListAssets).Name(GetAssets)
	assets.Get("/browse", assetHandler.BrowseAssets).Name(BrowseAssets)
	assets.Get("/:id", assetHandler.GetAsset).Name(GetAsset)
	assets.Post("/", assetHandler.UploadAsset).Name(UploadAsset)
	assets.Post("/folders", assetHandler.CreateFolder).Name(CreateFolder)
	assets.Delete("/:id", assetHandler.DeleteAsset).Name(DeleteAsset)

	// Generation endpoint
	v1.Post("/generate", generateHandler.Generate).Name(Generate)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	}).Name(HealthCheck)

	// Job endpoints
	jobs := v1.Group("/jobs")
	jobs.Get("/", jobHandler.ListJobs).Name(GetJobs)
	jobs.Get("/:id", jobHandler.GetJob).Name(GetJob)
	jobs.Get("/:id/status", jobHandler.GetJobStatus).Name(GetJobStatus)
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		routeCache = make(map[string]string)

		// Create a mock app
		app := fiber.New()

		// Create empty handlers for route registration
		mockAssetHandler := &handlers.AssetHandler{}
		mockGenerateHandler := &handlers.GenerateHandler{}
		mockJobHandler := &handlers.JobHandler{}

		RegisterRoutes(app, mockAssetHandler, mockGenerateHandler, mockJobHandler)

		// Extract routes from the app
		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				routeCache[route.Name] = route.Path
			}
		}
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()

	// Initialize cache if needed
	if routeCache == nil {
		routeCacheMu.RUnlock()
		initRouteCache()
		routeCacheMu.RLock()
	}

	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	// Replace parameters in the route
	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, value)
	}

	// Remove trailing slash if it's a base endpoint with no parameters
	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	// Add query parameters if any
	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// Asset route helpers

// GetAssetsURL returns the URL for listing asset records
func GetAssetsURL(queryParams url.Values) string {
	return BuildURL(GetAssets, nil, queryParams)
}

// BrowseAssetsURL returns the URL for browsing the object store
func BrowseAssetsURL(queryParams url.Values) string {
	return BuildURL(BrowseAssets, nil, queryParams)
}

// GetAssetURL returns the URL for getting an asset by ID
func GetAssetURL(id string) string {
	return BuildURL(GetAsset, map[string]string{"id": id}, nil)
}

// UploadAssetURL returns the URL for uploading an asset
func UploadAssetURL() string {
	return BuildURL(UploadAsset, nil, nil)
}

// CreateFolderURL returns the URL for creating a folder marker
func CreateFolderURL() string {
	return BuildURL(CreateFolder, nil, nil)
}

// DeleteAssetURL returns the URL for deleting an asset by ID
func DeleteAssetURL(id string) string {
	return BuildURL(DeleteAsset, map[string]string{"id": id}, nil)
}

// Generation route helper

// GenerateURL returns the URL for submitting a generation job
func GenerateURL() string {
	return BuildURL(Generate, nil, nil)
}

// Health check route helper

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// Job route helpers

// GetJobsURL returns the URL for listing jobs
func GetJobsURL(queryParams url.Values) string {
	return BuildURL(GetJobs, nil, queryParams)
}

// GetJobURL returns the URL for getting a job by ID
func GetJobURL(id string) string {
	return BuildURL(GetJob, map[string]string{"id": id}, nil)
}

// GetJobStatusURL returns the URL for getting a job's status
func GetJobStatusURL(id string) string {
	return BuildURL(GetJobStatus, map[string]string{"id": id}, nil)
}
