// Package kv provides the small key-value persistence layer popcorn keeps its
// local state in.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNotFound is returned by Get when the key has no value
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt indicates the persisted data could not be read back
	ErrCorrupt = errors.New("corrupt store data")
	// ErrUnknownDriver is returned by Open for an unsupported driver name
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Supported drivers
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Store is a flat key-value store
type Store interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources
	Close() error
}

// Open opens a store with the named driver at path
func Open(driver, path string) (Store, error) {
	var (
		store Store
		err   error
	)
	switch driver {
	case DriverFile, "":
		store, err = NewFileStore(path)
	case DriverSQLite:
		store, err = NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
