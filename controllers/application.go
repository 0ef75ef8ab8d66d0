package controllers

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
)

// newApplicationNumber builds a human-readable application number,
// e.g. APP-2026-483920.
func newApplicationNumber() string {
	return fmt.Sprintf("APP-%d-%06d", time.Now().Year(), rand.Intn(1000000))
}

// CreateApplication starts the wizard for the calling student. A student
// has at most one application per university.
func CreateApplication(c *gin.Context) {
	me := currentActor(c)

	var existing models.Application
	err := config.DB.Where("university_id = ? AND student_id = ?", me.UniversityID, me.ID).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Application already exists", "application": existing})
		return
	}

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	application := models.Application{
		ID:                uuid.NewString(),
		UniversityID:      me.UniversityID,
		StudentID:         me.ID,
		ApplicationNumber: newApplicationNumber(),
		Status:            models.AppStatusDraft,
		CurrentStep:       models.StepBasicInfo,
		CompletedSteps:    models.StringList{},
	}
	if university.RegistrationConfig.FeeEnabled {
		application.FeeAmountPaise = university.RegistrationConfig.FeeAmountPaise
	}

	var lead models.Lead
	if err := config.DB.Where("university_id = ? AND email = ?", me.UniversityID, me.Email).
		First(&lead).Error; err == nil {
		application.LeadID = lead.ID
	}

	if err := config.DB.Create(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	if application.LeadID != "" {
		entry := services.NewTimelineEntry(
			models.EventStageChanged, "Application started", me.ID, me.Name,
			map[string]interface{}{"application_id": application.ID},
		)
		services.AppendLeadEvent(config.DB, application.LeadID, map[string]interface{}{
			"stage":          models.StageApplicationStarted,
			"application_id": application.ID,
		}, entry)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Application created", "application": application})
}

// GetMyApplication returns the calling student's application with the
// wizard state needed to resume it.
func GetMyApplication(c *gin.Context) {
	me := currentActor(c)

	var application models.Application
	if err := config.DB.Where("university_id = ? AND student_id = ?", me.UniversityID, me.ID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No application found"})
		return
	}

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application":    application,
		"required_steps": university.RegistrationConfig.RequiredSteps(),
		"missing_steps":  services.MissingSteps(university.RegistrationConfig, application.CompletedSteps),
	})
}

// ListApplications returns tenant applications for staff review.
func ListApplications(c *gin.Context) {
	me := currentActor(c)

	query := config.DB.Model(&models.Application{}).Where("university_id = ?", me.UniversityID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	var total int64
	query.Count(&total)

	page, limit := pageParams(c)
	var applications []models.Application
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}

// GetApplication returns one application for staff.
func GetApplication(c *gin.Context) {
	me := currentActor(c)

	var application models.Application
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	var documents []models.Document
	config.DB.Where("application_id = ?", application.ID).Find(&documents)

	c.JSON(http.StatusOK, gin.H{"application": application, "documents": documents})
}

// myOpenApplication loads the student's application and rejects edits
// after final submission.
func myOpenApplication(c *gin.Context, me actor) (*models.Application, bool) {
	var application models.Application
	if err := config.DB.Where("university_id = ? AND student_id = ?", me.UniversityID, me.ID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No application found"})
		return nil, false
	}
	if application.SubmittedAt != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Application already submitted"})
		return nil, false
	}
	return &application, true
}

// UpdateBasicInfo saves the wizard's first step.
func UpdateBasicInfo(c *gin.Context) {
	var info map[string]interface{}
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(info) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Basic info cannot be empty"})
		return
	}

	me := currentActor(c)
	application, ok := myOpenApplication(c, me)
	if !ok {
		return
	}

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	application.BasicInfo = datatypes.JSONMap(info)
	application.MarkStepCompleted(models.StepBasicInfo,
		services.NextStep(university.RegistrationConfig, models.StepBasicInfo))
	if application.Status == models.AppStatusDraft {
		application.Status = models.AppStatusInProgress
	}

	if err := config.DB.Save(application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save basic info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Basic info saved", "application": application})
}

// UpdateEducationalDetails saves the prior-qualification rows.
func UpdateEducationalDetails(c *gin.Context) {
	type EducationRequest struct {
		EducationalDetails []models.EducationalDetail `json:"educational_details" binding:"required,min=1"`
	}

	var req EducationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)
	application, ok := myOpenApplication(c, me)
	if !ok {
		return
	}

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}
	if !university.RegistrationConfig.EducationalDetailsEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Educational details step is not enabled"})
		return
	}

	application.EducationalDetails = models.EducationalDetailList(req.EducationalDetails)
	application.MarkStepCompleted(models.StepEducationalDetails,
		services.NextStep(university.RegistrationConfig, models.StepEducationalDetails))
	if application.Status == models.AppStatusDraft {
		application.Status = models.AppStatusInProgress
	}

	if err := config.DB.Save(application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save educational details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Educational details saved", "application": application})
}

// UpdateCourseSelection sets the course, department and session choice.
func UpdateCourseSelection(c *gin.Context) {
	type CourseSelectionRequest struct {
		CourseID  string `json:"course_id" binding:"required"`
		SessionID string `json:"session_id"`
	}

	var req CourseSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)
	application, ok := myOpenApplication(c, me)
	if !ok {
		return
	}

	var course models.Course
	if err := config.DB.Where("id = ? AND university_id = ? AND is_active = ?",
		req.CourseID, me.UniversityID, true).First(&course).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course not found"})
		return
	}

	if req.SessionID != "" {
		var session models.Session
		if err := config.DB.Where("id = ? AND university_id = ?", req.SessionID, me.UniversityID).
			First(&session).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session not found"})
			return
		}
	}

	updates := map[string]interface{}{
		"course_id":     course.ID,
		"department_id": course.DepartmentID,
		"session_id":    req.SessionID,
	}
	if err := config.DB.Model(application).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save course selection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course selection saved"})
}

// SubmitApplication finalizes the wizard once every required step is done.
func SubmitApplication(c *gin.Context) {
	me := currentActor(c)
	application, ok := myOpenApplication(c, me)
	if !ok {
		return
	}

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	missing := services.MissingSteps(university.RegistrationConfig, application.CompletedSteps)
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "Application is incomplete",
			"missing_steps": missing,
		})
		return
	}

	now := time.Now()
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Model(application).Updates(map[string]interface{}{
			"status":          models.AppStatusSubmitted,
			"current_step":    models.StepFinalSubmission,
			"completed_steps": append(application.CompletedSteps, models.StepFinalSubmission),
			"submitted_at":    now,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	if application.LeadID != "" {
		entry := services.NewTimelineEntry(
			models.EventStageChanged, "Application submitted", me.ID, me.Name,
			map[string]interface{}{"application_number": application.ApplicationNumber},
		)
		services.AppendLeadEvent(config.DB, application.LeadID, map[string]interface{}{
			"stage": models.StageDocumentsSubmitted,
		}, entry)
	}

	services.SendApplicationStatusEmail(me.Email, me.Name, application.ApplicationNumber,
		models.AppStatusSubmitted, "Your application has been received and is awaiting review.",
		services.EmailContext{UniversityID: me.UniversityID, UserID: me.ID, ApplicationID: application.ID})

	c.JSON(http.StatusOK, gin.H{
		"message":            "Application submitted",
		"application_number": application.ApplicationNumber,
		"submitted_at":       now,
	})
}

// ReviewApplication lets staff admit or reject a submitted application.
func ReviewApplication(c *gin.Context) {
	type ReviewRequest struct {
		Decision string `json:"decision" binding:"required"`
		Notes    string `json:"notes"`
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Decision != models.AppStatusAdmitted && req.Decision != models.AppStatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be admitted or rejected"})
		return
	}

	me := currentActor(c)

	var application models.Application
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if application.SubmittedAt == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Application has not been submitted yet"})
		return
	}
	if application.Status == models.AppStatusAdmitted || application.Status == models.AppStatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Application has already been reviewed"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&application).Updates(map[string]interface{}{
		"status":       req.Decision,
		"reviewed_by":  me.ID,
		"reviewed_at":  now,
		"review_notes": req.Notes,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review application"})
		return
	}

	if application.LeadID != "" {
		stage := models.StageAdmissionConfirmed
		if req.Decision == models.AppStatusRejected {
			stage = models.StageClosedLost
		}
		entry := services.NewTimelineEntry(
			models.EventStageChanged,
			fmt.Sprintf("Application %s", req.Decision),
			me.ID, me.Name, nil,
		)
		services.AppendLeadEvent(config.DB, application.LeadID,
			map[string]interface{}{"stage": stage}, entry)
	}

	var student models.User
	if err := config.DB.Where("id = ?", application.StudentID).First(&student).Error; err == nil {
		message := "Congratulations! Your application has been accepted."
		if req.Decision == models.AppStatusRejected {
			message = "We are sorry to inform you that your application was not successful."
		}
		services.SendApplicationStatusEmail(student.Email, student.Name,
			application.ApplicationNumber, req.Decision, message,
			services.EmailContext{UniversityID: me.UniversityID, UserID: student.ID, ApplicationID: application.ID})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application reviewed", "status": req.Decision})
}
