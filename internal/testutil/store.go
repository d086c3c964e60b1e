// Package testutil holds helpers shared by package tests.
package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/nhle/knowledge-tracker/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Clock is a settable time source for tests.
type Clock struct {
	T time.Time
}

// Now returns the clock's current time.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// AddDays moves the clock forward by n calendar days.
func (c *Clock) AddDays(n int) { c.T = c.T.AddDate(0, 0, n) }

// SeqIDs returns a deterministic id generator yielding prefix-1, prefix-2, ...
func SeqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

