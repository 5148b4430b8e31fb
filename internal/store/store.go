package store

import (
	"context"
	"errors"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// ErrUnauthenticated is returned before any network call when no acting user
// is known.
var ErrUnauthenticated = errors.New("not signed in")

// ErrNotFound is returned when an identifier does not exist in the acting
// user's namespace.
var ErrNotFound = errors.New("record not found")

// RecordStore is the per-user persistence boundary for saved records. Every
// operation is scoped to the acting user's own namespace; no cross-user path
// exists. Writes accept only validated four-field records; the caller runs
// CandidateRecord.Validate first.
type RecordStore interface {
	// Create persists a record and returns the store-assigned identifier.
	Create(ctx context.Context, userID string, rec domain.Record) (string, error)

	// Update overwrites the full document under id. Edit flows re-supply
	// all four fields; there is no partial update.
	Update(ctx context.Context, userID, id string, rec domain.Record) error

	// Delete removes the record with the given identifier.
	Delete(ctx context.Context, userID, id string) error

	// List returns the current record set ordered by date descending.
	List(ctx context.Context, userID string) ([]domain.SavedRecord, error)

	// Subscribe registers fn to receive the complete ordered record set:
	// once on subscribe and again after every mutation. Each delivery is a
	// full replacement, never a delta; consumers must not merge. fn may be
	// invoked from concurrent mutating goroutines; a consumer that needs
	// serialized handling must synchronize inside fn. The returned stop
	// function releases the subscription and is safe to call more than
	// once.
	Subscribe(ctx context.Context, userID string, fn func([]domain.SavedRecord)) (stop func(), err error)
}
