// Package store persists listing snapshots. The postgres
// implementation is the production one; the RecordStore interface
// exists so the worker and harvester can be tested without a database.
package store

import (
	"context"

	"nattapol/villaharvester/internal/listing"
	"nattapol/villaharvester/internal/reconcile"
)

// RecordStore is the persistence capability the pipeline writes
// through. Both operations are transactionally scoped per call.
type RecordStore interface {
	// FindNeedingEnrichment returns active snapshots still missing
	// detail data, up to limit. The predicate is "no images yet":
	// a record freshly harvested has never had a detail pass.
	FindNeedingEnrichment(ctx context.Context, limit int) ([]listing.Snapshot, error)

	// Upsert merges the partial fields into the snapshot keyed by the
	// partial's external identifier, inserting on first discovery.
	// A slug collision with a different external identifier returns a
	// conflict error that errors.IsBenign reports true for.
	Upsert(ctx context.Context, phase reconcile.Phase, in listing.PartialFields) error

	// Deactivate soft-retires active snapshots in a province whose
	// external identifier is not in seen, returning how many.
	Deactivate(ctx context.Context, province string, seen []string) (int64, error)

	Close() error
}
