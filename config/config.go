// Package config loads and validates service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvDuration retrieves a duration-valued environment variable with a fallback
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// GetEnvInt retrieves an integer-valued environment variable with a fallback
func GetEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// LoadEnvFile loads a .env file if present. A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// ObjectStoreConfig holds the credentials and addressing for the S3-compatible store
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Timeout   time.Duration
}

// Validate checks that all required object store settings are present
func (c *ObjectStoreConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("object store endpoint is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("object store credentials are required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("object store bucket is required")
	}
	if c.Region == "" {
		return fmt.Errorf("object store region is required")
	}
	return nil
}

// ComputeConfig holds the settings for the external compute backend
type ComputeConfig struct {
	APIKey     string
	EndpointID string
	BaseURL    string
	Timeout    time.Duration
}

// Validate checks that all required compute backend settings are present
func (c *ComputeConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("compute API key is required")
	}
	if c.EndpointID == "" {
		return fmt.Errorf("compute endpoint id is required")
	}
	return nil
}

// LoadObjectStoreConfig builds the object store configuration from the environment
func LoadObjectStoreConfig() *ObjectStoreConfig {
	return &ObjectStoreConfig{
		Endpoint:  GetEnv("OBJECT_STORE_ENDPOINT", ""),
		AccessKey: GetEnv("OBJECT_STORE_ACCESS_KEY", ""),
		SecretKey: GetEnv("OBJECT_STORE_SECRET_KEY", ""),
		Bucket:    GetEnv("OBJECT_STORE_BUCKET", ""),
		Region:    GetEnv("OBJECT_STORE_REGION", "us-east-1"),
		Timeout:   GetEnvDuration("OBJECT_STORE_TIMEOUT", 30*time.Second),
	}
}

// LoadComputeConfig builds the compute backend configuration from the environment
func LoadComputeConfig() *ComputeConfig {
	return &ComputeConfig{
		APIKey:     GetEnv("COMPUTE_API_KEY", ""),
		EndpointID: GetEnv("COMPUTE_ENDPOINT_ID", ""),
		BaseURL:    GetEnv("COMPUTE_BASE_URL", "https://api.runpod.ai"),
		Timeout:    GetEnvDuration("COMPUTE_TIMEOUT", 30*time.Second),
	}
}
