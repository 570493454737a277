package projections

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	entryStore "carelog/internal/adapters/storage/entry"
	domainEntry "carelog/internal/domain/entry"
)

// GetSnapshotQuery carries input for the person snapshot projection.
type GetSnapshotQuery struct {
	Now time.Time // optional: if zero, time.Now() is used
}

// PersonSnapshot is one rendered row of the per-person overdue report.
// The four counters are display strings: a zero count renders as empty, so
// "never happened" reads as a blank cell rather than a 0.
type PersonSnapshot struct {
	Name        string // first-encountered raw spelling, trimmed
	Site        string // site of the most recent visit
	CheckIns    string
	Meals       string
	Gifts       string
	Referrals   string
	LastDate    string // DD/MM/YYYY; unparsable stored dates pass through verbatim
	LastDateRaw string // stored YYYY-MM-DD form, kept for sorting
	OverdueDays int    // whole days since the last parseable visit; 0 when none
	HasVisit    bool   // false when no entry for this person carried a parseable date
}

// GetSnapshotDeps holds dependencies for the snapshot projection.
type GetSnapshotDeps struct {
	EntryStore EntryStore
}

// personStats accumulates one person's rollup during the scan.
type personStats struct {
	name       string
	site       string
	checkIns   int
	meals      int
	gifts      int
	referrals  int
	lastRaw    string
	lastParsed time.Time // zero until a parseable date is seen
}

// QueryGetSnapshot reduces all entries into the per-person report.
// PRE: deps.EntryStore is non-nil
// POST: Exactly one row per derived person identity, sorted by display name
// ascending, case-insensitive. Unparsable dates are ignored for recency but
// their entries still feed the counters.
func QueryGetSnapshot(ctx context.Context, query GetSnapshotQuery, deps GetSnapshotDeps) ([]PersonSnapshot, error) {
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}

	entries, err := deps.EntryStore.List(ctx, entryStore.ListFilter{})
	if err != nil {
		return nil, err
	}

	people := make(map[string]*personStats)

	for _, e := range entries {
		key := domainEntry.PersonKey(e.Person)
		if key == "" {
			continue
		}

		p, ok := people[key]
		if !ok {
			// The first raw spelling wins as the display name, even when a
			// later entry spells the name differently.
			p = &personStats{
				name:    domainEntry.DisplayName(e.Person),
				site:    e.Site,
				lastRaw: e.Date,
			}
			people[key] = p
		}

		if domainEntry.HasCareType(e.CareTypes, domainEntry.CareTypeCheckIn) {
			p.checkIns++
		}
		if domainEntry.HasCareType(e.CareTypes, domainEntry.CareTypeMeals) {
			p.meals++
		}
		if domainEntry.HasCareType(e.CareTypes, domainEntry.CareTypeGifts) {
			p.gifts++
		}
		if domainEntry.HasCareType(e.CareTypes, domainEntry.CareTypeReferral) {
			p.referrals++
		}

		if parsed, err := domainEntry.ParseDate(e.Date); err == nil && parsed.After(p.lastParsed) {
			p.lastParsed = parsed
			p.lastRaw = e.Date
			p.site = e.Site
		}
	}

	rows := make([]PersonSnapshot, 0, len(people))
	for _, p := range people {
		row := PersonSnapshot{
			Name:        p.name,
			Site:        p.site,
			CheckIns:    blankIfZero(p.checkIns),
			Meals:       blankIfZero(p.meals),
			Gifts:       blankIfZero(p.gifts),
			Referrals:   blankIfZero(p.referrals),
			LastDate:    domainEntry.FormatDisplayDate(p.lastRaw),
			LastDateRaw: p.lastRaw,
		}
		if !p.lastParsed.IsZero() {
			row.HasVisit = true
			row.OverdueDays = wholeDays(now.Sub(p.lastParsed))
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	return rows, nil
}

// blankIfZero renders a counter, with zero shown as an empty cell.
func blankIfZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// wholeDays converts a duration to whole elapsed days.
func wholeDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}
