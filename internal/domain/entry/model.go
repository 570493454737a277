package entry

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyPerson     = errors.New("person cannot be empty")
	ErrEmptyDate       = errors.New("date cannot be empty")
	ErrEmptyTeamMember = errors.New("team member cannot be empty")
	ErrEmptySite       = errors.New("site cannot be empty")
)

// Care type vocabulary. Free-text values beyond these are permitted.
const (
	CareTypeCheckIn  = "Check-in"
	CareTypeMeals    = "Meals"
	CareTypeGifts    = "Gifts"
	CareTypeReferral = "Referral"
)

// CareTypes lists the fixed vocabulary in form/display order.
var CareTypes = []string{CareTypeCheckIn, CareTypeMeals, CareTypeGifts, CareTypeReferral}

// Site names. Conventional, not enforced at storage time.
const (
	SiteHenley  = "Henley"
	SiteEnfield = "Enfield"
)

// Sites lists the known sites in form/display order.
var Sites = []string{SiteHenley, SiteEnfield}

// DateLayout is the stored calendar date format.
const DateLayout = "2006-01-02"

// DisplayDateLayout is the format used for report display.
const DisplayDateLayout = "02/01/2006"

// Entry represents one recorded care visit.
type Entry struct {
	ID         int64
	Person     string
	CareTypes  string // comma-joined care type tags, e.g. "Check-in, Meals"
	Date       string // YYYY-MM-DD by convention; malformed values are stored as entered
	TeamMember string
	Notes      string
	Plan       string
	Site       string
	CreatedAt  time.Time
}

// Validate checks required-field presence.
// PRE: Entry struct is populated from user input
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Person) == "" {
		return ErrEmptyPerson
	}
	if e.Date == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(e.TeamMember) == "" {
		return ErrEmptyTeamMember
	}
	if strings.TrimSpace(e.Site) == "" {
		return ErrEmptySite
	}
	return nil
}

// JoinCareTypes joins selected care type tags into the stored form.
// An empty selection produces an empty string.
func JoinCareTypes(types []string) string {
	return strings.Join(types, ", ")
}

// HasCareType reports whether the stored care_types string carries the given
// tag. Matching is substring containment, not delimited-token matching: a
// value containing "Referral" inside a longer word still counts. The
// original recorder behaved this way and the reports must agree with
// historical data, so the looseness is kept here behind one function.
func HasCareType(careTypes, tag string) bool {
	return strings.Contains(careTypes, tag)
}

// PersonKey returns the derived person identity used for aggregation:
// case-insensitive, whitespace-trimmed. Never persisted.
func PersonKey(person string) string {
	return strings.ToLower(strings.TrimSpace(person))
}

// DisplayName returns the trimmed raw spelling used for display.
func DisplayName(person string) string {
	return strings.TrimSpace(person)
}

// Year extracts the 4-character year prefix of a stored date string.
// Returns false for dates too short to carry a year; such entries are
// excluded from all aggregation.
func Year(date string) (string, bool) {
	if len(date) < 4 {
		return "", false
	}
	return date[:4], true
}

// ParseDate parses a stored YYYY-MM-DD date string.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// FormatDisplayDate re-formats a stored date for display as DD/MM/YYYY.
// Unparsable stored dates pass through verbatim.
func FormatDisplayDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format(DisplayDateLayout)
}

// CSVHeader is the fixed export header. The column set and order are part
// of the external contract consumed by downstream spreadsheets.
var CSVHeader = []string{"ID", "Person", "Care Types", "Date", "Team Member", "Notes", "Plan", "Site", "Created At"}

// CSVRecord returns the entry as one export row, matching CSVHeader.
func (e *Entry) CSVRecord() []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Person,
		e.CareTypes,
		e.Date,
		e.TeamMember,
		e.Notes,
		e.Plan,
		e.Site,
		e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
