package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"admissions-api/models"
)

func TestNewTimelineEntryStampsActor(t *testing.T) {
	before := time.Now().UTC()
	entry := NewTimelineEntry(models.EventStageChanged, "Stage changed", "u1", "Counsellor One",
		map[string]interface{}{"from": "new_lead"})

	if entry.ID == "" {
		t.Fatalf("entry id is empty")
	}
	if entry.EventType != models.EventStageChanged {
		t.Fatalf("event type = %q", entry.EventType)
	}
	if entry.CreatedBy != "u1" || entry.CreatedByName != "Counsellor One" {
		t.Fatalf("actor = %q/%q", entry.CreatedBy, entry.CreatedByName)
	}
	if entry.CreatedAt.Before(before) || entry.CreatedAt.After(time.Now().UTC()) {
		t.Fatalf("created at = %v, outside test window", entry.CreatedAt)
	}
	if entry.Metadata["from"] != "new_lead" {
		t.Fatalf("metadata lost: %v", entry.Metadata)
	}
}

func TestAppendLeadEventUpdatesAndAppends(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `leads` WHERE id = "),
			columns: []string{"id", "university_id", "stage", "timeline"},
			rows: [][]driver.Value{{
				"lead-1", "uni-1", "new_lead",
				[]byte(`[{"id":"e1","event_type":"created","description":"Lead created"}]`),
			}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `leads` SET"),
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	entry := NewTimelineEntry(models.EventStageChanged, "Stage changed", "u1", "Counsellor One", nil)
	err := AppendLeadEvent(gormDB, "lead-1", map[string]interface{}{"stage": "contacted"}, entry)
	if err != nil {
		t.Fatalf("AppendLeadEvent: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}

func TestAppendLeadEventMissingLead(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `leads` WHERE id = "),
			columns: []string{"id"},
			rows:    [][]driver.Value{},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	entry := NewTimelineEntry(models.EventNoteAdded, "Note added", "u1", "Counsellor One", nil)
	if err := AppendLeadEvent(gormDB, "missing", nil, entry); err == nil {
		t.Fatalf("expected error for missing lead")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}
