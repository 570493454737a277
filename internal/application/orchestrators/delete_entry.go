package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	entryStore "carelog/internal/adapters/storage/entry"
)

// DeleteEntryDeps holds dependencies for DeleteEntry.
type DeleteEntryDeps struct {
	EntryStore entryStore.Store
}

// ExecuteDeleteEntry removes one entry by id.
// PRE: none
// POST: The entry is gone. Deleting an id that does not exist is reported
// as success (zero rows affected), matching the recorder's contract.
func ExecuteDeleteEntry(ctx context.Context, id int64, deps DeleteEntryDeps) error {
	if err := deps.EntryStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	slog.Info("entry_deleted", "id", id)
	return nil
}
