package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entryStore "carelog/internal/adapters/storage/entry"
	domain "carelog/internal/domain/entry"
)

// SubmitEntryInput carries input for a care visit submission.
type SubmitEntryInput struct {
	Person     string
	CareTypes  []string // selected tags; may be empty
	Date       string   // YYYY-MM-DD from the form; malformed values are stored as entered
	TeamMember string
	Notes      string
	Plan       string
	Site       string
}

// SubmitEntryDeps holds dependencies for SubmitEntry.
type SubmitEntryDeps struct {
	EntryStore entryStore.Store
}

// ExecuteSubmitEntry validates and persists a new care visit entry.
// PRE: Person, Date, TeamMember, Site are non-empty
// POST: Entry is durable before return; returns the generated id
func ExecuteSubmitEntry(ctx context.Context, input SubmitEntryInput, deps SubmitEntryDeps) (int64, error) {
	e := domain.Entry{
		Person:     input.Person,
		CareTypes:  domain.JoinCareTypes(input.CareTypes),
		Date:       input.Date,
		TeamMember: input.TeamMember,
		Notes:      input.Notes,
		Plan:       input.Plan,
		Site:       input.Site,
		CreatedAt:  time.Now().UTC(),
	}

	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validation: %w", err)
	}

	id, err := deps.EntryStore.Save(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save entry: %w", err)
	}

	slog.Info("entry_submitted", "id", id, "site", e.Site, "date", e.Date)
	return id, nil
}
