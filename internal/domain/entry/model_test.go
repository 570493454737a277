package entry_test

import (
	"strings"
	"testing"
	"time"

	"carelog/internal/domain/entry"
)

// TestEntry_Validate tests required-field validation of Entry.
func TestEntry_Validate(t *testing.T) {
	valid := entry.Entry{
		Person:     "John Doe",
		CareTypes:  "Check-in, Meals",
		Date:       "2023-10-27",
		TeamMember: "Jane Smith",
		Site:       "Henley",
	}

	tests := []struct {
		name    string
		mutate  func(e *entry.Entry)
		wantErr error
	}{
		{
			name:    "valid entry",
			mutate:  func(e *entry.Entry) {},
			wantErr: nil,
		},
		{
			name:    "empty care types allowed",
			mutate:  func(e *entry.Entry) { e.CareTypes = "" },
			wantErr: nil,
		},
		{
			name:    "empty notes and plan allowed",
			mutate:  func(e *entry.Entry) { e.Notes, e.Plan = "", "" },
			wantErr: nil,
		},
		{
			name:    "malformed date accepted",
			mutate:  func(e *entry.Entry) { e.Date = "27/10/2023" },
			wantErr: nil,
		},
		{
			name:    "empty person",
			mutate:  func(e *entry.Entry) { e.Person = "" },
			wantErr: entry.ErrEmptyPerson,
		},
		{
			name:    "whitespace-only person",
			mutate:  func(e *entry.Entry) { e.Person = "   " },
			wantErr: entry.ErrEmptyPerson,
		},
		{
			name:    "empty date",
			mutate:  func(e *entry.Entry) { e.Date = "" },
			wantErr: entry.ErrEmptyDate,
		},
		{
			name:    "empty team member",
			mutate:  func(e *entry.Entry) { e.TeamMember = "" },
			wantErr: entry.ErrEmptyTeamMember,
		},
		{
			name:    "empty site",
			mutate:  func(e *entry.Entry) { e.Site = "" },
			wantErr: entry.ErrEmptySite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := e.Validate(); err != tt.wantErr {
				t.Errorf("Entry.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestHasCareType tests substring tag matching semantics.
func TestHasCareType(t *testing.T) {
	tests := []struct {
		name      string
		careTypes string
		tag       string
		want      bool
	}{
		{"exact single tag", "Meals", "Meals", true},
		{"tag within joined list", "Check-in, Meals, Gifts", "Gifts", true},
		{"missing tag", "Check-in, Meals", "Referral", false},
		{"empty care types", "", "Check-in", false},
		{"substring of longer word still counts", "Self-Referral", "Referral", true},
		{"repeated tag counts once per call", "Meals, Meals", "Meals", true},
		{"case sensitive", "check-in", "Check-in", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.HasCareType(tt.careTypes, tt.tag); got != tt.want {
				t.Errorf("HasCareType(%q, %q) = %v, want %v", tt.careTypes, tt.tag, got, tt.want)
			}
		})
	}
}

// TestPersonKey tests derived person identity normalization.
func TestPersonKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{" Alice ", "alice"},
		{"ALICE", "alice"},
		{"John Doe", "john doe"},
		{"  ", ""},
	}

	for _, tt := range tests {
		if got := entry.PersonKey(tt.in); got != tt.want {
			t.Errorf("PersonKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestYear tests year extraction from stored date strings.
func TestYear(t *testing.T) {
	tests := []struct {
		date   string
		want   string
		wantOK bool
	}{
		{"2024-05-01", "2024", true},
		{"2024", "2024", true},
		{"202", "", false},
		{"", "", false},
		{"abcd-ef-gh", "abcd", true}, // garbage with a 4-char prefix still groups
	}

	for _, tt := range tests {
		got, ok := entry.Year(tt.date)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Year(%q) = (%q, %v), want (%q, %v)", tt.date, got, ok, tt.want, tt.wantOK)
		}
	}
}

// TestFormatDisplayDate tests DD/MM/YYYY display formatting.
func TestFormatDisplayDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2023-10-27", "27/10/2023"},
		{"2024-01-02", "02/01/2024"},
		{"not-a-date", "not-a-date"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := entry.FormatDisplayDate(tt.in); got != tt.want {
			t.Errorf("FormatDisplayDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestJoinCareTypes tests the stored comma-joined form.
func TestJoinCareTypes(t *testing.T) {
	if got := entry.JoinCareTypes([]string{"Type A", "Type B"}); got != "Type A, Type B" {
		t.Errorf("JoinCareTypes = %q, want %q", got, "Type A, Type B")
	}
	if got := entry.JoinCareTypes(nil); got != "" {
		t.Errorf("JoinCareTypes(nil) = %q, want empty", got)
	}
}

// TestEntry_CSVRecord tests the export row shape.
func TestEntry_CSVRecord(t *testing.T) {
	created := time.Date(2023, 10, 27, 9, 30, 0, 0, time.UTC)
	e := entry.Entry{
		ID:         1,
		Person:     "John Doe",
		CareTypes:  "Type A, Type B",
		Date:       "2023-10-27",
		TeamMember: "Jane Smith",
		Notes:      "Test Notes",
		Plan:       "Test Plan",
		Site:       "Henley",
		CreatedAt:  created,
	}

	got := e.CSVRecord()
	want := []string{"1", "John Doe", "Type A, Type B", "2023-10-27", "Jane Smith", "Test Notes", "Test Plan", "Henley", "2023-10-27T09:30:00Z"}

	if len(got) != len(entry.CSVHeader) {
		t.Fatalf("CSVRecord has %d columns, header has %d", len(got), len(entry.CSVHeader))
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("CSVRecord = %v, want %v", got, want)
	}
}

// TestCSVHeader pins the external export contract.
func TestCSVHeader(t *testing.T) {
	want := "ID,Person,Care Types,Date,Team Member,Notes,Plan,Site,Created At"
	if got := strings.Join(entry.CSVHeader, ","); got != want {
		t.Errorf("CSVHeader = %q, want %q", got, want)
	}
}
