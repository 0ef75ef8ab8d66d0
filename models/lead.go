package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/datatypes"
)

// Lead pipeline stages, roughly ordered from first contact to closure.
const (
	StageNewLead            = "new_lead"
	StageContacted          = "contacted"
	StageInterested         = "interested"
	StageNotInterested      = "not_interested"
	StageFollowUpScheduled  = "follow_up_scheduled"
	StageApplicationStarted = "application_started"
	StageDocumentsPending   = "documents_pending"
	StageDocumentsSubmitted = "documents_submitted"
	StageFeePending         = "fee_pending"
	StageFeePaid            = "fee_paid"
	StageAdmissionConfirmed = "admission_confirmed"
	StageClosedLost         = "closed_lost"
)

// LeadStages is the set of accepted stage values.
var LeadStages = map[string]bool{
	StageNewLead:            true,
	StageContacted:          true,
	StageInterested:         true,
	StageNotInterested:      true,
	StageFollowUpScheduled:  true,
	StageApplicationStarted: true,
	StageDocumentsPending:   true,
	StageDocumentsSubmitted: true,
	StageFeePending:         true,
	StageFeePaid:            true,
	StageAdmissionConfirmed: true,
	StageClosedLost:         true,
}

// Lead sources.
const (
	SourceManual       = "manual"
	SourceWebsite      = "website"
	SourceBulkUpload   = "bulk_upload"
	SourceShiksha      = "shiksha"
	SourceCollegedunia = "collegedunia"
	SourceOtherAPI     = "other_api"
)

// Timeline event types.
const (
	EventCreated           = "created"
	EventAssigned          = "assigned"
	EventReassigned        = "reassigned"
	EventStageChanged      = "stage_changed"
	EventNoteAdded         = "note_added"
	EventFollowUpSet       = "follow_up_set"
	EventFollowUpCompleted = "follow_up_completed"
	EventDocumentUploaded  = "document_uploaded"
	EventDocumentVerified  = "document_verified"
	EventPaymentInitiated  = "payment_initiated"
	EventPaymentSuccess    = "payment_success"
	EventPaymentFailed     = "payment_failed"
	EventRefundInitiated   = "refund_initiated"
	EventRefundCompleted   = "refund_completed"
	EventTestStarted       = "test_started"
	EventTestCompleted     = "test_completed"
	EventChatMessage       = "chat_message"
)

// TimelineEntry is one record in a lead's append-only audit trail.
type TimelineEntry struct {
	ID            string                 `json:"id"`
	EventType     string                 `json:"event_type"`
	Description   string                 `json:"description"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedBy     string                 `json:"created_by,omitempty"`
	CreatedByName string                 `json:"created_by_name,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

type TimelineEntries []TimelineEntry

func (t TimelineEntries) Value() (driver.Value, error) {
	if t == nil {
		t = TimelineEntries{}
	}
	return jsonValue(t)
}
func (t *TimelineEntries) Scan(src interface{}) error { return jsonScan(t, src) }

type Note struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	CreatedBy     string    `json:"created_by"`
	CreatedByName string    `json:"created_by_name"`
	CreatedAt     time.Time `json:"created_at"`
}

type NoteList []Note

func (n NoteList) Value() (driver.Value, error) {
	if n == nil {
		n = NoteList{}
	}
	return jsonValue(n)
}
func (n *NoteList) Scan(src interface{}) error { return jsonScan(n, src) }

type FollowUp struct {
	ID          string     `json:"id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Notes       string     `json:"notes,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

type FollowUpList []FollowUp

func (f FollowUpList) Value() (driver.Value, error) {
	if f == nil {
		f = FollowUpList{}
	}
	return jsonValue(f)
}
func (f *FollowUpList) Scan(src interface{}) error { return jsonScan(f, src) }

type Lead struct {
	ID           string `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID string `gorm:"column:university_id;size:36;index:idx_leads_tenant_email;index:idx_leads_tenant_phone" json:"university_id"`

	Name  string `gorm:"column:name;size:255" json:"name"`
	Email string `gorm:"column:email;size:255;index:idx_leads_tenant_email" json:"email"`
	Phone string `gorm:"column:phone;size:32;index:idx_leads_tenant_phone" json:"phone"`

	Source        string `gorm:"column:source;size:32;default:manual" json:"source"`
	SourceDetails string `gorm:"column:source_details;size:255" json:"source_details,omitempty"`
	Stage         string `gorm:"column:stage;size:32;default:new_lead;index" json:"stage"`

	InterestedCourseID     string `gorm:"column:interested_course_id;size:36" json:"interested_course_id,omitempty"`
	InterestedDepartmentID string `gorm:"column:interested_department_id;size:36" json:"interested_department_id,omitempty"`

	AssignedTo     string     `gorm:"column:assigned_to;size:36;index" json:"assigned_to,omitempty"`
	AssignedToName string     `gorm:"column:assigned_to_name;size:255" json:"assigned_to_name,omitempty"`
	AssignedAt     *time.Time `gorm:"column:assigned_at" json:"assigned_at,omitempty"`

	ApplicationID string `gorm:"column:application_id;size:36" json:"application_id,omitempty"`

	FollowUps    FollowUpList `gorm:"column:follow_ups;type:json" json:"follow_ups"`
	NextFollowUp *time.Time   `gorm:"column:next_follow_up" json:"next_follow_up,omitempty"`
	Notes        NoteList     `gorm:"column:notes;type:json" json:"notes"`

	// Timeline is append-only; entries are never edited or removed.
	Timeline TimelineEntries `gorm:"column:timeline;type:json" json:"timeline"`

	Tags         StringList        `gorm:"column:tags;type:json" json:"tags"`
	CustomFields datatypes.JSONMap `gorm:"column:custom_fields" json:"custom_fields,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}
