// Package repos provides access to job and asset database operations.
package repos

import "errors"

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("record not found")
