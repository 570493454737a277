package projections

import (
	"context"
	"sort"

	entryStore "carelog/internal/adapters/storage/entry"
	domainEntry "carelog/internal/domain/entry"
)

// BreakdownRow is one rendered row of the yearly/site report.
type BreakdownRow struct {
	Year        string
	Site        string // Henley, Enfield or Total
	CheckIns    int
	Meals       int
	Gifts       int
	Referrals   int
	PeopleCount int // distinct derived person identities, not visits
}

// GetBreakdownDeps holds dependencies for the breakdown projection.
type GetBreakdownDeps struct {
	EntryStore EntryStore
}

// breakdownBuckets is the fixed per-year bucket order of the report.
var breakdownBuckets = []string{domainEntry.SiteHenley, domainEntry.SiteEnfield, "Total"}

// bucketStats accumulates counters for one year/site bucket.
type bucketStats struct {
	checkIns  int
	meals     int
	gifts     int
	referrals int
	people    map[string]struct{}
}

func newBucketStats() *bucketStats {
	return &bucketStats{people: make(map[string]struct{})}
}

// add applies one entry to the bucket. Each tag increments its counter by
// exactly one per entry, however often the substring appears.
func (b *bucketStats) add(e domainEntry.Entry) {
	if domainEntry.HasCareType(e.CareTypes, domainEntry.CareTypeCheckIn) {
		b.checkIns++
	}
	if domainEntry.HasCareType(e.CareTypes, domainEntry.CareTypeMeals) {
		b.meals++
	}
	if domainEntry.HasCareType(e.CareTypes, domainEntry.CareTypeGifts) {
		b.gifts++
	}
	if domainEntry.HasCareType(e.CareTypes, domainEntry.CareTypeReferral) {
		b.referrals++
	}
	if key := domainEntry.PersonKey(e.Person); key != "" {
		b.people[key] = struct{}{}
	}
}

// QueryGetBreakdown reduces all entries into the yearly/site report in a
// single pass.
// PRE: deps.EntryStore is non-nil
// POST: Rows sorted by year descending (string comparison), three rows per
// year in Henley, Enfield, Total order
func QueryGetBreakdown(ctx context.Context, deps GetBreakdownDeps) ([]BreakdownRow, error) {
	entries, err := deps.EntryStore.List(ctx, entryStore.ListFilter{})
	if err != nil {
		return nil, err
	}

	years := make(map[string]map[string]*bucketStats)

	for _, e := range entries {
		year, ok := domainEntry.Year(e.Date)
		if !ok {
			continue // dates too short to carry a year never reach any bucket
		}

		buckets, ok := years[year]
		if !ok {
			buckets = make(map[string]*bucketStats, len(breakdownBuckets))
			for _, name := range breakdownBuckets {
				buckets[name] = newBucketStats()
			}
			years[year] = buckets
		}

		buckets["Total"].add(e)
		if e.Site == domainEntry.SiteHenley || e.Site == domainEntry.SiteEnfield {
			buckets[e.Site].add(e)
		}
	}

	sortedYears := make([]string, 0, len(years))
	for year := range years {
		sortedYears = append(sortedYears, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(sortedYears)))

	rows := make([]BreakdownRow, 0, len(sortedYears)*len(breakdownBuckets))
	for _, year := range sortedYears {
		for _, site := range breakdownBuckets {
			b := years[year][site]
			rows = append(rows, BreakdownRow{
				Year:        year,
				Site:        site,
				CheckIns:    b.checkIns,
				Meals:       b.meals,
				Gifts:       b.gifts,
				Referrals:   b.referrals,
				PeopleCount: len(b.people),
			})
		}
	}
	return rows, nil
}
