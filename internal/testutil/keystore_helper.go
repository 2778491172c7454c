package testutil

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/ihwang125/NewsToText/pkg/keystore"
)

// NewTestFileStore creates a file keystore under a per-test temp dir.
func NewTestFileStore(t *testing.T) *keystore.FileStore {
	t.Helper()

	store, err := keystore.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("Failed to create test file keystore: %v", err)
	}
	return store
}

// SetupMiniRedis creates a miniredis instance for testing. It is torn
// down automatically when the test ends.
func SetupMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}

// NewTestRedisStore creates a redis keystore connected to miniredis.
func NewTestRedisStore(t *testing.T, mr *miniredis.Miniredis) *keystore.RedisStore {
	t.Helper()

	store, err := keystore.NewRedisStore(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("Failed to create test redis keystore: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close redis keystore: %v", err)
		}
	})
	return store
}
