package controllers

import (
	"database/sql/driver"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"admissions-api/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestContext builds a gin context carrying the JSON body and the
// claims the auth middleware would have set.
func newTestContext(method, body string, user map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	for k, v := range user {
		c.Set(k, v)
	}
	return c, w
}

func studentClaims(id, universityID string) map[string]string {
	return map[string]string{
		"userID":       id,
		"email":        id + "@students.test",
		"userName":     "Test Student",
		"role":         "student",
		"universityID": universityID,
	}
}

// submitSteps scripts the full statement sequence of a graded submission.
// The question bank holds one single-choice question worth 1 mark with a
// 0.5 negative mark; passing requires 1 mark.
func submitSteps(expires time.Time, appUpdate *capturedStmt) []*queryStep {
	questions := `[{"id":"q1","question_text":"2+2?","question_type":"single_choice",` +
		`"options":["3","4"],"marks":1,"negative_marks":0.5}]`
	return []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `test_attempts` WHERE id = \\? AND student_id = "),
			columns: []string{"id", "university_id", "student_id", "application_id",
				"test_config_id", "questions", "expires_at", "status"},
			rows: [][]driver.Value{{
				"att-1", "uni-1", "stu-1", "app-1", "cfg-1",
				[]byte(questions), expires, "in_progress",
			}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `test_configs` WHERE id = "),
			columns: []string{"id", "university_id", "passing_marks", "total_marks"},
			rows:    [][]driver.Value{{"cfg-1", "uni-1", 1.0, 1.0}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `questions` WHERE id IN "),
			columns: []string{"id", "question_type", "options", "correct_options", "marks", "negative_marks"},
			rows: [][]driver.Value{{
				"q1", "single_choice", []byte(`["3","4"]`), []byte(`[1]`), 1.0, 0.5,
			}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `test_attempts` SET"),
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `test_results`"),
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `applications` WHERE id = "),
			columns: []string{"id", "university_id", "student_id", "lead_id", "status",
				"current_step", "completed_steps"},
			rows: [][]driver.Value{{
				"app-1", "uni-1", "stu-1", "", "in_progress",
				"entrance_test", []byte(`["basic_info"]`),
			}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `universities` WHERE id = "),
			columns: []string{"id", "registration_config"},
			rows: [][]driver.Value{{
				"uni-1", []byte(`{"entrance_test_enabled":true,"fee_enabled":true}`),
			}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `applications` SET"),
			capture: appUpdate,
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `applications` WHERE id = "),
			columns: []string{"id", "lead_id"},
			rows:    [][]driver.Value{{"app-1", ""}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `email_logs`"),
		},
	}
}

func TestSubmitTestFailedAttemptKeepsCursorOnTestStep(t *testing.T) {
	var appUpdate capturedStmt
	gormDB, state, cleanup := newScriptedGormDB(t, submitSteps(time.Now().Add(time.Hour), &appUpdate))
	defer cleanup()
	config.DB = gormDB

	c, w := newTestContext(http.MethodPost, `{"responses":{"q1":[0]}}`, studentClaims("stu-1", "uni-1"))
	c.Params = gin.Params{{Key: "attemptId", Value: "att-1"}}

	SubmitTest(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"passed":false`) {
		t.Fatalf("expected a failed result, body %s", w.Body.String())
	}
	if got := setArg(t, &appUpdate, "current_step"); got != "entrance_test" {
		t.Fatalf("current_step = %v, want entrance_test", got)
	}
	if steps := fmt.Sprint(setArg(t, &appUpdate, "completed_steps")); !strings.Contains(steps, "entrance_test") {
		t.Fatalf("completed_steps = %v, step not recorded", steps)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}

func TestSubmitTestPassedAttemptAdvancesCursor(t *testing.T) {
	var appUpdate capturedStmt
	gormDB, state, cleanup := newScriptedGormDB(t, submitSteps(time.Now().Add(time.Hour), &appUpdate))
	defer cleanup()
	config.DB = gormDB

	c, w := newTestContext(http.MethodPost, `{"responses":{"q1":[1]}}`, studentClaims("stu-1", "uni-1"))
	c.Params = gin.Params{{Key: "attemptId", Value: "att-1"}}

	SubmitTest(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"passed":true`) {
		t.Fatalf("expected a passing result, body %s", w.Body.String())
	}
	if got := setArg(t, &appUpdate, "current_step"); got != "payment" {
		t.Fatalf("current_step = %v, want payment", got)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}

func TestSubmitTestRejectsSecondSubmission(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `test_attempts` WHERE id = \\? AND student_id = "),
			columns: []string{"id", "student_id", "status"},
			rows:    [][]driver.Value{{"att-1", "stu-1", "submitted"}},
		},
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()
	config.DB = gormDB

	c, w := newTestContext(http.MethodPost, `{"responses":{"q1":[1]}}`, studentClaims("stu-1", "uni-1"))
	c.Params = gin.Params{{Key: "attemptId", Value: "att-1"}}

	SubmitTest(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already submitted") {
		t.Fatalf("body = %s", w.Body.String())
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}

func TestSubmitTestRejectsExpiredAttempt(t *testing.T) {
	expired := time.Now().Add(-2 * time.Minute)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `test_attempts` WHERE id = \\? AND student_id = "),
			columns: []string{"id", "student_id", "expires_at", "status"},
			rows:    [][]driver.Value{{"att-1", "stu-1", expired, "in_progress"}},
		},
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()
	config.DB = gormDB

	c, w := newTestContext(http.MethodPost, `{"responses":{"q1":[1]}}`, studentClaims("stu-1", "uni-1"))
	c.Params = gin.Params{{Key: "attemptId", Value: "att-1"}}

	SubmitTest(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "expired") {
		t.Fatalf("body = %s", w.Body.String())
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}

func TestSubmitTestAllowsGraceAfterDeadline(t *testing.T) {
	var appUpdate capturedStmt
	// Deadline just passed, still inside the grace window.
	gormDB, state, cleanup := newScriptedGormDB(t, submitSteps(time.Now().Add(-5*time.Second), &appUpdate))
	defer cleanup()
	config.DB = gormDB

	c, w := newTestContext(http.MethodPost, `{"responses":{"q1":[1]}}`, studentClaims("stu-1", "uni-1"))
	c.Params = gin.Params{{Key: "attemptId", Value: "att-1"}}

	SubmitTest(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}

func TestGetTestResultStaffScopedToUniversity(t *testing.T) {
	steps := []*queryStep{
		{
			kind: kindQuery,
			pattern: regexp.MustCompile(
				"SELECT \\* FROM `test_results` WHERE attempt_id = \\? AND university_id = "),
			columns: []string{"id"},
			rows:    [][]driver.Value{},
		},
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()
	config.DB = gormDB

	c, w := newTestContext(http.MethodGet, "", map[string]string{
		"userID":       "admin-2",
		"email":        "admin@other.test",
		"userName":     "Other Admin",
		"role":         "university_admin",
		"universityID": "uni-2",
	})
	c.Params = gin.Params{{Key: "attemptId", Value: "att-1"}}

	GetTestResult(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for a foreign tenant", w.Code)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}

func TestGetTestResultStudentOwnOnly(t *testing.T) {
	steps := []*queryStep{
		{
			kind: kindQuery,
			pattern: regexp.MustCompile(
				"SELECT \\* FROM `test_results` WHERE attempt_id = \\? AND student_id = "),
			columns: []string{"id"},
			rows:    [][]driver.Value{},
		},
	}
	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()
	config.DB = gormDB

	c, w := newTestContext(http.MethodGet, "", studentClaims("stu-2", "uni-1"))
	c.Params = gin.Params{{Key: "attemptId", Value: "att-1"}}

	GetTestResult(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for someone else's attempt", w.Code)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet db expectations: %v", err)
	}
}
