// Package mocks provides in-memory doubles for the external dependencies of
// the service: the S3-compatible object store and the compute backend.
package mocks
