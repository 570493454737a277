package projections

import (
	"context"

	entryStore "carelog/internal/adapters/storage/entry"
	domainEntry "carelog/internal/domain/entry"
)

// EntryStore interface for entry queries.
type EntryStore interface {
	List(ctx context.Context, filter entryStore.ListFilter) ([]domainEntry.Entry, error)
}
