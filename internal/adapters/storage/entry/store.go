package entry

import (
	"context"

	domain "carelog/internal/domain/entry"
)

// ListFilter carries list query parameters.
type ListFilter struct {
	OrderByDateDesc bool // order by the raw date string descending (lexicographic)
}

// Store defines persistence operations for care visit entries.
type Store interface {
	// Save inserts a new entry and returns the generated id.
	Save(ctx context.Context, e domain.Entry) (int64, error)
	// List returns all entries, optionally ordered by date descending.
	List(ctx context.Context, filter ListFilter) ([]domain.Entry, error)
	// Delete removes the entry with the given id. Deleting a nonexistent
	// id is not an error.
	Delete(ctx context.Context, id int64) error
}
