// Package testutil provides shared test helpers for setting up databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/notechat/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T, opts ...storage.Option) *storage.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "notechat-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := storage.Open(dbFile.Name(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Clock is a manually advanced time source for deterministic ordering.
type Clock struct {
	t time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current instant and advances the clock by one second.
func (c *Clock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}
