// Package test provides utilities for setting up and running integration tests.
//
// The suite boots a real API server backed by a file-based SQLite database
// and mocked external dependencies (object store and compute backend), and
// exposes a real API client pointed at it. Tests exercise the full
// client -> routes -> handlers -> services -> repos path.
package test
