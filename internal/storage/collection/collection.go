// Package collection defines the whole-collection key-value contract the
// registry and ledger persist through. Each named collection is one JSON
// array read and written as a unit, which keeps the core swappable between
// an in-memory fake, Redis, and Postgres.
package collection

import (
	"context"
	"errors"
)

// ErrNoChange may be returned from an UpdateFunc to abort the update without
// writing anything. Update propagates it so callers can tell "nothing to do"
// from success.
var ErrNoChange = errors.New("collection unchanged")

// UpdateFunc transforms the current raw collection payload into the next
// one. cur is nil when the collection does not exist yet.
type UpdateFunc func(cur []byte) ([]byte, error)

// Store is a whole-collection KV store.
//
// Update must be exclusive per collection: the read-decide-write sequence
// runs under a single-writer lock, a transaction, or an optimistic retry
// loop, so two concurrent updates never lose writes. An error from fn leaves
// the collection untouched.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Update(ctx context.Context, name string, fn UpdateFunc) error
}

// Collection names used by the core.
const (
	HousesCollection = "houses"

	// LegacyRatingsCollection is the pre-theme global ledger. It is read
	// and pruned on delete but never written by new submissions.
	LegacyRatingsCollection = "ratings"

	ratingsPrefix = "ratings:"
)

// RatingsCollection names the theme-partitioned ledger collection.
func RatingsCollection(theme string) string {
	return ratingsPrefix + theme
}
