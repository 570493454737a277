package entry_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	storage "carelog/internal/adapters/storage"
	entryStore "carelog/internal/adapters/storage/entry"
	domain "carelog/internal/domain/entry"
)

// openTestStore creates a store over an in-memory SQLite database.
func openTestStore(t *testing.T) entryStore.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return entryStore.NewSQLiteStore(db)
}

func testEntry(person, date string) domain.Entry {
	return domain.Entry{
		Person:     person,
		CareTypes:  "Check-in, Meals",
		Date:       date,
		TeamMember: "Jane Smith",
		Notes:      "Test Notes",
		Plan:       "Test Plan",
		Site:       "Henley",
		CreatedAt:  time.Date(2023, 10, 27, 9, 30, 0, 0, time.UTC),
	}
}

// TestSQLiteStore_SaveAndList tests insert and round-trip.
func TestSQLiteStore_SaveAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, testEntry("John Doe", "2023-10-27"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id != 1 {
		t.Errorf("first insert got id %d, want 1", id)
	}

	id2, err := store.Save(ctx, testEntry("Mary Major", "2023-11-01"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id2 != 2 {
		t.Errorf("second insert got id %d, want 2", id2)
	}

	entries, err := store.List(ctx, entryStore.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	got := entries[0]
	if got.Person != "John Doe" || got.CareTypes != "Check-in, Meals" || got.Date != "2023-10-27" ||
		got.TeamMember != "Jane Smith" || got.Notes != "Test Notes" || got.Plan != "Test Plan" || got.Site != "Henley" {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(time.Date(2023, 10, 27, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("created_at round-trip mismatch: %v", got.CreatedAt)
	}
}

// TestSQLiteStore_ListOrderByDateDesc tests lexicographic date ordering.
func TestSQLiteStore_ListOrderByDateDesc(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2023-10-27", "2024-01-05", "2022-12-31"} {
		if _, err := store.Save(ctx, testEntry("John Doe", date)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	entries, err := store.List(ctx, entryStore.ListFilter{OrderByDateDesc: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	wantDates := []string{"2024-01-05", "2023-10-27", "2022-12-31"}
	for i, want := range wantDates {
		if entries[i].Date != want {
			t.Errorf("position %d: got date %q, want %q", i, entries[i].Date, want)
		}
	}
}

// TestSQLiteStore_Delete tests delete-by-id including the nonexistent case.
func TestSQLiteStore_Delete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Save(ctx, testEntry("John Doe", "2023-10-27"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	entries, err := store.List(ctx, entryStore.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries after delete, want 0", len(entries))
	}

	// Deleting an id that never existed reports success and changes nothing.
	if err := store.Delete(ctx, 9999); err != nil {
		t.Errorf("Delete of nonexistent id returned error: %v", err)
	}
}

// TestSQLiteStore_EmptyCareTypes tests that an empty selection stores as empty string.
func TestSQLiteStore_EmptyCareTypes(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	e := testEntry("John Doe", "2023-10-27")
	e.CareTypes = ""
	if _, err := store.Save(ctx, e); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := store.List(ctx, entryStore.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if entries[0].CareTypes != "" {
		t.Errorf("got care_types %q, want empty", entries[0].CareTypes)
	}
}
