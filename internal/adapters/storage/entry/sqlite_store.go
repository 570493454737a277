package entry

import (
	"context"
	"fmt"
	"time"

	storage "carelog/internal/adapters/storage"
	domain "carelog/internal/domain/entry"
)

type sqliteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore returns a Store backed by SQLite.
func NewSQLiteStore(db storage.SQLDB) Store {
	return &sqliteStore{db: db}
}

// Save persists an Entry.
// PRE: e has been validated
// POST: row inserted into entries, generated id returned
func (s *sqliteStore) Save(ctx context.Context, e domain.Entry) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (person, care_types, date, team_member, notes, plan, site, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		e.Person,
		e.CareTypes,
		e.Date,
		e.TeamMember,
		e.Notes,
		e.Plan,
		e.Site,
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("entry save: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("entry save id: %w", err)
	}
	return id, nil
}

// List retrieves all entries.
// PRE: filter has valid parameters
// POST: returns every stored entry, date-descending when requested
func (s *sqliteStore) List(ctx context.Context, filter ListFilter) ([]domain.Entry, error) {
	query := `
		SELECT id, person, care_types, date, team_member, notes, plan, site, created_at
		FROM entries`
	if filter.OrderByDateDesc {
		query += ` ORDER BY date DESC`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("entry list: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var createdAt string
		if err := rows.Scan(
			&e.ID,
			&e.Person,
			&e.CareTypes,
			&e.Date,
			&e.TeamMember,
			&e.Notes,
			&e.Plan,
			&e.Site,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("entry scan: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("entry rows: %w", err)
	}
	return entries, nil
}

// Delete removes an entry by id.
// PRE: none
// POST: row with the given id is gone; zero rows affected is still success
func (s *sqliteStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("entry delete: %w", err)
	}
	return nil
}
