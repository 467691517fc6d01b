package test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mediaforge/mediaforge/internal/db"
	"github.com/mediaforge/mediaforge/internal/db/repos"
	"github.com/mediaforge/mediaforge/internal/services"
	"github.com/mediaforge/mediaforge/pkg/api/v1/client"
	"github.com/mediaforge/mediaforge/test/mocks"
)

// DefaultTestTimeout is the default timeout for test suites.
const DefaultTestTimeout = 30 * time.Second

// Suite encapsulates all components needed for integration testing.
// It provides a complete test setup with:
//   - File-based SQLite database
//   - Real API server
//   - Real API client
//   - Mocked object store and compute backend
type Suite struct {
	t *testing.T

	// Server components
	App    *fiber.App
	Server *httptest.Server

	// Client components
	APIClient client.Client

	// Database components
	DB        *gorm.DB
	JobRepo   *repos.JobRepository
	AssetRepo *repos.AssetRepository

	// Mocked external dependencies
	Store   *mocks.ObjectStore
	Backend *mocks.ComputeBackend

	// Services
	Generation *services.Generation

	// Context management
	ctx        context.Context
	cancelFunc context.CancelFunc

	tmpDir  string
	cleanup func()
}

// NewSuite creates a new test suite. The suite must be cleaned up after use
// by calling Cleanup.
func NewSuite(t *testing.T) *Suite {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)

	s := &Suite{
		t:          t,
		ctx:        ctx,
		cancelFunc: cancel,
	}

	s.cleanup = func() {
		if s.Server != nil {
			s.Server.Close()
		}
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
		if s.DB != nil {
			sqlDB, err := s.DB.DB()
			if err == nil && sqlDB != nil {
				_ = sqlDB.Close()
			}
		}
		if s.tmpDir != "" {
			_ = os.RemoveAll(s.tmpDir)
		}
	}

	s.setupDB()
	s.Store = mocks.NewObjectStore()
	s.Backend = mocks.NewComputeBackend()
	SetupServer(s)

	return s
}

// setupDB opens a file-based SQLite database and runs migrations
func (s *Suite) setupDB() {
	tmpDir, err := os.MkdirTemp("", "mediaforge_test")
	require.NoError(s.t, err, "failed to create temporary directory")
	s.tmpDir = tmpDir

	dbPath := filepath.Join(tmpDir, "mediaforge_test.db")
	gormDB, err := gorm.Open(sqlite.Open(dbPath+"?_json=1"), &gorm.Config{})
	require.NoError(s.t, err, "failed to open database")

	require.NoError(s.t, db.Migrate(gormDB), "failed to run migrations")

	s.DB = gormDB
	s.JobRepo = repos.NewJobRepository(gormDB)
	s.AssetRepo = repos.NewAssetRepository(gormDB)
}

// Cleanup tears down the test suite, releasing all resources.
// This should be deferred immediately after creating the suite.
func (s *Suite) Cleanup() {
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	if s.Generation != nil {
		s.Generation.Wait()
	}
	if s.cleanup != nil {
		s.cleanup()
	}
}

// Context returns the suite's context, which is automatically
// canceled when the suite is cleaned up.
func (s *Suite) Context() context.Context {
	return s.ctx
}

// Require returns a require.Assertions instance for this suite.
func (s *Suite) Require() *require.Assertions {
	return require.New(s.t)
}

// Retry retries a function until it succeeds or the number of retries is reached.
func (s *Suite) Retry(fn func() error, retries int, interval time.Duration) (err error) {
	for i := 0; i < retries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return
}
