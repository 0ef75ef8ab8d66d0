package models

import (
	"database/sql/driver"
	"time"
)

// Question types.
const (
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
)

// Attempt statuses.
const (
	AttemptInProgress = "in_progress"
	AttemptSubmitted  = "submitted"
)

type IntList []int

func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		l = IntList{}
	}
	return jsonValue(l)
}
func (l *IntList) Scan(src interface{}) error { return jsonScan(l, src) }

// Question is an authoritative question-bank entry. CorrectOptions must
// never be serialized onto a student-facing attempt.
type Question struct {
	ID           string `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID string `gorm:"column:university_id;size:36;index" json:"university_id"`

	QuestionText   string     `gorm:"column:question_text;type:text" json:"question_text"`
	QuestionType   string     `gorm:"column:question_type;size:32;default:single_choice" json:"question_type"`
	Options        StringList `gorm:"column:options;type:json" json:"options"`
	CorrectOptions IntList    `gorm:"column:correct_options;type:json" json:"correct_options,omitempty"`
	Marks          float64    `gorm:"column:marks;default:1" json:"marks"`
	NegativeMarks  float64    `gorm:"column:negative_marks;default:0" json:"negative_marks"`

	DepartmentID string     `gorm:"column:department_id;size:36" json:"department_id,omitempty"`
	CourseID     string     `gorm:"column:course_id;size:36" json:"course_id,omitempty"`
	Subject      string     `gorm:"column:subject;size:255" json:"subject,omitempty"`
	Difficulty   string     `gorm:"column:difficulty;size:16;default:medium" json:"difficulty"`
	Tags         StringList `gorm:"column:tags;type:json" json:"tags"`

	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

type TestConfig struct {
	ID           string `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID string `gorm:"column:university_id;size:36;index" json:"university_id"`

	Name        string `gorm:"column:name;size:255" json:"name"`
	Description string `gorm:"column:description;size:512" json:"description,omitempty"`

	DurationMinutes int     `gorm:"column:duration_minutes;default:60" json:"duration_minutes"`
	TotalQuestions  int     `gorm:"column:total_questions;default:50" json:"total_questions"`
	TotalMarks      float64 `gorm:"column:total_marks;default:50" json:"total_marks"`
	// PassingMarks is an absolute threshold, not a percentage.
	PassingMarks    float64 `gorm:"column:passing_marks;default:20" json:"passing_marks"`
	NegativeMarking bool    `gorm:"column:negative_marking;default:false" json:"negative_marking"`

	// CourseID empty means the config is the course-agnostic default.
	DepartmentID string `gorm:"column:department_id;size:36" json:"department_id,omitempty"`
	CourseID     string `gorm:"column:course_id;size:36" json:"course_id,omitempty"`

	Instructions StringList `gorm:"column:instructions;type:json" json:"instructions"`

	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TestConfig) TableName() string {
	return "test_configs"
}

// ServedQuestion is the answer-stripped copy of a question stored on an
// attempt. It deliberately has no correct-options field.
type ServedQuestion struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options"`
	Marks         float64  `json:"marks"`
	NegativeMarks float64  `json:"negative_marks"`
}

type ServedQuestionList []ServedQuestion

func (l ServedQuestionList) Value() (driver.Value, error) {
	if l == nil {
		l = ServedQuestionList{}
	}
	return jsonValue(l)
}
func (l *ServedQuestionList) Scan(src interface{}) error { return jsonScan(l, src) }

// ResponseMap maps question id to selected option indices.
type ResponseMap map[string][]int

func (m ResponseMap) Value() (driver.Value, error) {
	if m == nil {
		m = ResponseMap{}
	}
	return jsonValue(m)
}
func (m *ResponseMap) Scan(src interface{}) error { return jsonScan(m, src) }

type TestAttempt struct {
	ID            string `gorm:"primaryKey;column:id;size:36" json:"id"`
	UniversityID  string `gorm:"column:university_id;size:36;index" json:"university_id"`
	StudentID     string `gorm:"column:student_id;size:36;index" json:"student_id"`
	ApplicationID string `gorm:"column:application_id;size:36;index" json:"application_id"`
	TestConfigID  string `gorm:"column:test_config_id;size:36" json:"test_config_id"`

	Questions ServedQuestionList `gorm:"column:questions;type:json" json:"questions"`
	Responses ResponseMap        `gorm:"column:responses;type:json" json:"responses,omitempty"`

	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	// ExpiresAt is the server-side deadline; submissions are rejected
	// once it has passed (plus a small grace window).
	ExpiresAt            *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	TimeRemainingSeconds int        `gorm:"column:time_remaining_seconds" json:"time_remaining_seconds"`

	Status    string    `gorm:"column:status;size:16;default:in_progress;index" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// QuestionResult is the per-question grading detail on a TestResult.
type QuestionResult struct {
	QuestionID    string  `json:"question_id"`
	StudentAnswer []int   `json:"student_answer"`
	CorrectAnswer []int   `json:"correct_answer"`
	Marks         float64 `json:"marks"`
	IsCorrect     bool    `json:"is_correct"`
	Status        string  `json:"status"` // correct, incorrect, unanswered
}

type QuestionResultList []QuestionResult

func (l QuestionResultList) Value() (driver.Value, error) {
	if l == nil {
		l = QuestionResultList{}
	}
	return jsonValue(l)
}
func (l *QuestionResultList) Scan(src interface{}) error { return jsonScan(l, src) }

// TestResult is written once per attempt and never updated.
type TestResult struct {
	ID            string `gorm:"primaryKey;column:id;size:36" json:"id"`
	AttemptID     string `gorm:"column:attempt_id;size:36;uniqueIndex" json:"attempt_id"`
	UniversityID  string `gorm:"column:university_id;size:36;index" json:"university_id"`
	StudentID     string `gorm:"column:student_id;size:36;index" json:"student_id"`
	ApplicationID string `gorm:"column:application_id;size:36;index" json:"application_id"`

	TotalQuestions int `gorm:"column:total_questions" json:"total_questions"`
	Attempted      int `gorm:"column:attempted" json:"attempted"`
	Correct        int `gorm:"column:correct" json:"correct"`
	Incorrect      int `gorm:"column:incorrect" json:"incorrect"`
	Unanswered     int `gorm:"column:unanswered" json:"unanswered"`

	MarksObtained float64 `gorm:"column:marks_obtained" json:"marks_obtained"`
	TotalMarks    float64 `gorm:"column:total_marks" json:"total_marks"`
	Percentage    float64 `gorm:"column:percentage" json:"percentage"`

	Passed       bool    `gorm:"column:passed" json:"passed"`
	PassingMarks float64 `gorm:"column:passing_marks" json:"passing_marks"`

	QuestionResults QuestionResultList `gorm:"column:question_results;type:json" json:"question_results"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TestResult) TableName() string {
	return "test_results"
}
