package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
)

var errDuplicateKey = errors.New("Error 1062: Duplicate entry")

func TestParseImportRowFieldAliases(t *testing.T) {
	row := ParseImportRow(map[string]interface{}{
		"student_name":  "Asha Verma",
		"student_email": "asha@example.com",
		"mobile":        "9876543210",
		"course":        "B.Tech CSE",
	})

	if row.Name != "Asha Verma" {
		t.Fatalf("name = %q", row.Name)
	}
	if row.Email != "asha@example.com" {
		t.Fatalf("email = %q", row.Email)
	}
	if row.Phone != "9876543210" {
		t.Fatalf("phone = %q", row.Phone)
	}
	if row.CourseInterest != "B.Tech CSE" {
		t.Fatalf("course interest = %q", row.CourseInterest)
	}
}

func TestParseImportRowPrefersCanonicalKeys(t *testing.T) {
	row := ParseImportRow(map[string]interface{}{
		"name":         "Canonical",
		"student_name": "Alias",
	})
	if row.Name != "Canonical" {
		t.Fatalf("name = %q, want Canonical", row.Name)
	}
}

func TestParseImportRowTrimsAndIgnoresNonStrings(t *testing.T) {
	row := ParseImportRow(map[string]interface{}{
		"name":  "  Rohan  ",
		"email": 42,
		"phone": "  ",
	})
	if row.Name != "Rohan" {
		t.Fatalf("name = %q, want trimmed Rohan", row.Name)
	}
	if row.Email != "" || row.Phone != "" {
		t.Fatalf("email/phone = %q/%q, want empty", row.Email, row.Phone)
	}
}

func TestImportRowValid(t *testing.T) {
	cases := []struct {
		row  ImportRow
		want bool
	}{
		{ImportRow{Name: "A", Email: "a@x.com"}, true},
		{ImportRow{Name: "A", Phone: "123"}, true},
		{ImportRow{Name: "A"}, false},
		{ImportRow{Email: "a@x.com"}, false},
		{ImportRow{}, false},
	}
	for i, tc := range cases {
		if got := tc.row.Valid(); got != tc.want {
			t.Errorf("case %d: Valid() = %v, want %v", i, got, tc.want)
		}
	}
}

func TestImportTalliesSumToRowCount(t *testing.T) {
	countPattern := regexp.MustCompile("SELECT count\\(\\*\\) FROM `leads`")
	insertPattern := regexp.MustCompile("INSERT INTO `leads`")

	steps := []*queryStep{
		// Row 1: new lead, inserted.
		{
			kind:    kindQuery,
			pattern: countPattern,
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{
			kind:    kindExec,
			pattern: insertPattern,
		},
		// Row 2: duplicate.
		{
			kind:    kindQuery,
			pattern: countPattern,
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		// Row 3 is invalid and never reaches the database.
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	importer := LeadImporter{DB: gormDB}
	rows := []map[string]interface{}{
		{"name": "Asha", "email": "asha@example.com", "inquiry_details": "Interested in B.Tech"},
		{"name": "Rohan", "phone": "9876543210"},
		{"email": "nameless@example.com"},
	}

	summary := importer.Import("uni-1", "bulk_upload", "leads.csv", rows, "staff-1", "Staff One")

	if summary.Created != 1 || summary.Duplicates != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want 1/1/1", summary)
	}
	if got := summary.Created + summary.Duplicates + summary.Failed; got != len(rows) {
		t.Fatalf("tallies sum to %d, want %d", got, len(rows))
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}

func TestImportInsertFailureCountsAsFailed(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count\\(\\*\\) FROM `leads`"),
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `leads`"),
			err:     errDuplicateKey,
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	importer := LeadImporter{DB: gormDB}
	summary := importer.Import("uni-1", "shiksha", "shiksha", []map[string]interface{}{
		{"name": "Asha", "email": "asha@example.com"},
	}, "system", "System")

	if summary.Failed != 1 || summary.Created != 0 {
		t.Fatalf("summary = %+v, want failed=1", summary)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}
