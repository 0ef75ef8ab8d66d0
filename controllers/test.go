package controllers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
)

// submitGraceSeconds is the slack allowed on top of the attempt deadline
// to absorb network latency on the final submit.
const submitGraceSeconds = 60

// CreateQuestion adds a question to the tenant's bank.
func CreateQuestion(c *gin.Context) {
	type CreateQuestionRequest struct {
		QuestionText   string   `json:"question_text" binding:"required"`
		QuestionType   string   `json:"question_type"`
		Options        []string `json:"options" binding:"required,min=2"`
		CorrectOptions []int    `json:"correct_options" binding:"required,min=1"`
		Marks          float64  `json:"marks"`
		NegativeMarks  float64  `json:"negative_marks"`
		DepartmentID   string   `json:"department_id"`
		CourseID       string   `json:"course_id"`
		Subject        string   `json:"subject"`
		Difficulty     string   `json:"difficulty"`
		Tags           []string `json:"tags"`
	}

	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questionType := req.QuestionType
	if questionType == "" {
		questionType = models.QuestionSingleChoice
	}
	if questionType != models.QuestionSingleChoice && questionType != models.QuestionMultipleChoice {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown question type"})
		return
	}
	if questionType == models.QuestionSingleChoice && len(req.CorrectOptions) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Single choice questions need exactly one correct option"})
		return
	}
	for _, idx := range req.CorrectOptions {
		if idx < 0 || idx >= len(req.Options) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Correct option index out of range"})
			return
		}
	}
	if req.NegativeMarks < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Negative marks must not be negative"})
		return
	}

	marks := req.Marks
	if marks <= 0 {
		marks = 1
	}

	me := currentActor(c)

	question := models.Question{
		ID:             uuid.NewString(),
		UniversityID:   me.UniversityID,
		QuestionText:   req.QuestionText,
		QuestionType:   questionType,
		Options:        models.StringList(req.Options),
		CorrectOptions: models.IntList(req.CorrectOptions),
		Marks:          marks,
		NegativeMarks:  req.NegativeMarks,
		DepartmentID:   req.DepartmentID,
		CourseID:       req.CourseID,
		Subject:        req.Subject,
		Difficulty:     req.Difficulty,
		Tags:           models.StringList(req.Tags),
		IsActive:       true,
	}

	if err := config.DB.Create(&question).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Question created", "question": question})
}

// ListQuestions returns bank questions with answers, for staff only.
func ListQuestions(c *gin.Context) {
	me := currentActor(c)

	query := config.DB.Model(&models.Question{}).Where("university_id = ?", me.UniversityID)
	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subject = ?", subject)
	}

	var total int64
	query.Count(&total)

	page, limit := pageParams(c)
	var questions []models.Question
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions, "total": total, "page": page, "limit": limit})
}

// UpdateQuestion edits or deactivates one question.
func UpdateQuestion(c *gin.Context) {
	type UpdateQuestionRequest struct {
		QuestionText   *string   `json:"question_text"`
		Options        *[]string `json:"options"`
		CorrectOptions *[]int    `json:"correct_options"`
		Marks          *float64  `json:"marks"`
		NegativeMarks  *float64  `json:"negative_marks"`
		Subject        *string   `json:"subject"`
		Difficulty     *string   `json:"difficulty"`
		IsActive       *bool     `json:"is_active"`
	}

	var req UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var question models.Question
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&question).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.QuestionText != nil {
		updates["question_text"] = *req.QuestionText
	}
	if req.Options != nil {
		updates["options"] = models.StringList(*req.Options)
	}
	if req.CorrectOptions != nil {
		updates["correct_options"] = models.IntList(*req.CorrectOptions)
	}
	if req.Marks != nil {
		updates["marks"] = *req.Marks
	}
	if req.NegativeMarks != nil {
		updates["negative_marks"] = *req.NegativeMarks
	}
	if req.Subject != nil {
		updates["subject"] = *req.Subject
	}
	if req.Difficulty != nil {
		updates["difficulty"] = *req.Difficulty
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&question).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update question"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question updated"})
}

// CreateTestConfig defines an entrance test template, optionally per course.
func CreateTestConfig(c *gin.Context) {
	type CreateTestConfigRequest struct {
		Name            string   `json:"name" binding:"required"`
		Description     string   `json:"description"`
		DurationMinutes int      `json:"duration_minutes" binding:"required,min=1"`
		TotalQuestions  int      `json:"total_questions" binding:"required,min=1"`
		TotalMarks      float64  `json:"total_marks" binding:"required"`
		PassingMarks    float64  `json:"passing_marks" binding:"required"`
		NegativeMarking bool     `json:"negative_marking"`
		DepartmentID    string   `json:"department_id"`
		CourseID        string   `json:"course_id"`
		Instructions    []string `json:"instructions"`
	}

	var req CreateTestConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PassingMarks > req.TotalMarks {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passing marks cannot exceed total marks"})
		return
	}

	me := currentActor(c)

	testConfig := models.TestConfig{
		ID:              uuid.NewString(),
		UniversityID:    me.UniversityID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		TotalQuestions:  req.TotalQuestions,
		TotalMarks:      req.TotalMarks,
		PassingMarks:    req.PassingMarks,
		NegativeMarking: req.NegativeMarking,
		DepartmentID:    req.DepartmentID,
		CourseID:        req.CourseID,
		Instructions:    models.StringList(req.Instructions),
		IsActive:        true,
	}

	if err := config.DB.Create(&testConfig).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create test config"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Test config created", "test_config": testConfig})
}

// ListTestConfigs returns the tenant's test templates.
func ListTestConfigs(c *gin.Context) {
	me := currentActor(c)

	var configs []models.TestConfig
	if err := config.DB.Where("university_id = ?", me.UniversityID).
		Order("created_at DESC").Find(&configs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch test configs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"test_configs": configs, "total": len(configs)})
}

// testConfigForApplication picks the course-specific config when one
// exists, falling back to the course-agnostic default.
func testConfigForApplication(universityID, courseID string) (*models.TestConfig, error) {
	var testConfig models.TestConfig
	if courseID != "" {
		err := config.DB.Where("university_id = ? AND course_id = ? AND is_active = ?",
			universityID, courseID, true).First(&testConfig).Error
		if err == nil {
			return &testConfig, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	err := config.DB.Where("university_id = ? AND (course_id = '' OR course_id IS NULL) AND is_active = ?",
		universityID, true).First(&testConfig).Error
	if err != nil {
		return nil, err
	}
	return &testConfig, nil
}

// StartTest begins (or resumes) the student's entrance test attempt.
// Starting is idempotent: an in-progress attempt is returned as-is, the
// question sample is never redrawn.
func StartTest(c *gin.Context) {
	me := currentActor(c)

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}
	if !university.RegistrationConfig.EntranceTestEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Entrance test is not enabled"})
		return
	}

	var application models.Application
	if err := config.DB.Where("university_id = ? AND student_id = ?", me.UniversityID, me.ID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No application found"})
		return
	}

	var attempt models.TestAttempt
	err := config.DB.Where("application_id = ? AND status IN ?",
		application.ID, []string{models.AttemptInProgress, models.AttemptSubmitted}).
		First(&attempt).Error
	if err == nil {
		if attempt.Status == models.AttemptSubmitted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Test already submitted"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Test resumed", "attempt": attempt})
		return
	}

	testConfig, err := testConfigForApplication(me.UniversityID, application.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No test is configured for this university"})
		return
	}

	poolQuery := config.DB.Where("university_id = ? AND is_active = ?", me.UniversityID, true)
	if testConfig.CourseID != "" {
		poolQuery = poolQuery.Where("course_id = ? OR course_id = ''", testConfig.CourseID)
	}
	var pool []models.Question
	if err := poolQuery.Find(&pool).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load questions"})
		return
	}
	if len(pool) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No questions available"})
		return
	}

	sample := services.SampleQuestions(pool, testConfig.TotalQuestions, rand.Perm)
	now := time.Now().UTC()
	expires := now.Add(time.Duration(testConfig.DurationMinutes) * time.Minute)

	attempt = models.TestAttempt{
		ID:                   uuid.NewString(),
		UniversityID:         me.UniversityID,
		StudentID:            me.ID,
		ApplicationID:        application.ID,
		TestConfigID:         testConfig.ID,
		Questions:            models.ServedQuestionList(services.StripAnswers(sample)),
		StartedAt:            &now,
		ExpiresAt:            &expires,
		TimeRemainingSeconds: testConfig.DurationMinutes * 60,
		Status:               models.AttemptInProgress,
	}

	if err := config.DB.Create(&attempt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start test"})
		return
	}

	config.DB.Model(&application).Update("test_attempt_id", attempt.ID)

	if application.LeadID != "" {
		entry := services.NewTimelineEntry(models.EventTestStarted, "Entrance test started", me.ID, me.Name, nil)
		services.AppendLeadEvent(config.DB, application.LeadID, nil, entry)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Test started", "attempt": attempt})
}

// SubmitTest grades the attempt, persists an immutable result and marks
// the wizard step complete.
func SubmitTest(c *gin.Context) {
	type SubmitTestRequest struct {
		Responses map[string][]int `json:"responses" binding:"required"`
	}

	var req SubmitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var attempt models.TestAttempt
	if err := config.DB.Where("id = ? AND student_id = ?", c.Param("attemptId"), me.ID).
		First(&attempt).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attempt not found"})
		return
	}
	if attempt.Status == models.AttemptSubmitted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Test already submitted"})
		return
	}
	if attempt.ExpiresAt != nil &&
		time.Now().After(attempt.ExpiresAt.Add(submitGraceSeconds*time.Second)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Test time has expired"})
		return
	}

	var testConfig models.TestConfig
	if err := config.DB.Where("id = ?", attempt.TestConfigID).First(&testConfig).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Test configuration missing"})
		return
	}

	ids := make([]string, 0, len(attempt.Questions))
	for _, q := range attempt.Questions {
		ids = append(ids, q.ID)
	}
	var bankQuestions []models.Question
	if err := config.DB.Where("id IN ?", ids).Find(&bankQuestions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load questions"})
		return
	}
	bank := make(map[string]models.Question, len(bankQuestions))
	for _, q := range bankQuestions {
		bank[q.ID] = q
	}

	summary := services.GradeAttempt(attempt.Questions, bank, req.Responses, testConfig.PassingMarks)

	result := models.TestResult{
		ID:              uuid.NewString(),
		AttemptID:       attempt.ID,
		UniversityID:    attempt.UniversityID,
		StudentID:       me.ID,
		ApplicationID:   attempt.ApplicationID,
		TotalQuestions:  summary.TotalQuestions,
		Attempted:       summary.Attempted,
		Correct:         summary.Correct,
		Incorrect:       summary.Incorrect,
		Unanswered:      summary.Unanswered,
		MarksObtained:   summary.MarksObtained,
		TotalMarks:      summary.TotalMarks,
		Percentage:      summary.Percentage,
		Passed:          summary.Passed,
		PassingMarks:    testConfig.PassingMarks,
		QuestionResults: models.QuestionResultList(summary.QuestionResults),
	}

	now := time.Now().UTC()
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&attempt).Updates(map[string]interface{}{
			"responses":    models.ResponseMap(req.Responses),
			"submitted_at": now,
			"status":       models.AttemptSubmitted,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&result).Error; err != nil {
			return err
		}

		var application models.Application
		if err := tx.Where("id = ?", attempt.ApplicationID).First(&application).Error; err != nil {
			return err
		}
		var university models.University
		if err := tx.Where("id = ?", application.UniversityID).First(&university).Error; err != nil {
			return err
		}
		application.TestScore = &result.MarksObtained
		application.TestPassed = &result.Passed
		// The step counts as taken either way, but a failed attempt keeps
		// the cursor on the test step instead of advancing the wizard.
		next := models.StepEntranceTest
		if summary.Passed {
			next = services.NextStep(university.RegistrationConfig, models.StepEntranceTest)
		}
		application.MarkStepCompleted(models.StepEntranceTest, next)
		return tx.Save(&application).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit test"})
		return
	}

	var application models.Application
	if err := config.DB.Where("id = ?", attempt.ApplicationID).First(&application).Error; err == nil &&
		application.LeadID != "" {
		entry := services.NewTimelineEntry(
			models.EventTestCompleted, "Entrance test completed", me.ID, me.Name,
			map[string]interface{}{"marks": result.MarksObtained, "passed": result.Passed},
		)
		services.AppendLeadEvent(config.DB, application.LeadID, nil, entry)
	}

	services.SendTestResultEmail(me.Email, me.Name, result.MarksObtained, result.TotalMarks, result.Passed,
		services.EmailContext{UniversityID: me.UniversityID, UserID: me.ID, ApplicationID: attempt.ApplicationID})

	c.JSON(http.StatusOK, gin.H{"message": "Test submitted", "result": result})
}

// GetTestResult returns the graded result for one attempt. Students may
// only read their own result; staff only results of their own university.
func GetTestResult(c *gin.Context) {
	me := currentActor(c)

	var result models.TestResult
	query := config.DB.Where("attempt_id = ?", c.Param("attemptId"))
	switch me.Role {
	case models.RoleStudent:
		query = query.Where("student_id = ?", me.ID)
	case models.RoleSuperAdmin:
	default:
		query = query.Where("university_id = ?", me.UniversityID)
	}
	if err := query.First(&result).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
