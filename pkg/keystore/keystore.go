// Package keystore provides the durable key-value store backing session
// persistence: a small set of fixed string keys that survive process
// restarts until explicitly deleted.
//
// Two backends are provided: a JSON file under the user config dir (the
// default for a local terminal client) and Redis (for deployments where
// client state lives off-box). Both satisfy the same Store interface, so
// the session layer never knows which one it is talking to.
//
// Only the session store writes through this interface; every other
// component reads authentication state from the session store's in-memory
// view.
package keystore

import (
	"context"
	"errors"
)

// Fixed keys used for session persistence.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrKeyNotFound indicates the requested key is not present in the store.
// This is expected behavior for a client that has never logged in, not an
// error condition.
var ErrKeyNotFound = errors.New("keystore: key not found")

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases any resources held by the store.
	Close() error
}
