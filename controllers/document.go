package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
	"admissions-api/utils"
)

// documentRequirement resolves a named requirement from the university's
// configuration, or nil when the name is free-form.
func documentRequirement(cfg models.RegistrationConfig, name string) *models.DocumentRequirement {
	for i := range cfg.RequiredDocuments {
		if strings.EqualFold(cfg.RequiredDocuments[i].Name, name) {
			return &cfg.RequiredDocuments[i]
		}
	}
	return nil
}

// UploadDocument stores one file against the student's application.
// Re-uploading the same requirement replaces the previous file.
func UploadDocument(c *gin.Context) {
	me := currentActor(c)

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document name is required"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}
	if !university.RegistrationConfig.DocumentsEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document upload is not enabled"})
		return
	}

	var application models.Application
	if err := config.DB.Where("university_id = ? AND student_id = ?", me.UniversityID, me.ID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No application found"})
		return
	}
	if application.SubmittedAt != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Application already submitted"})
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	requirement := documentRequirement(university.RegistrationConfig, name)

	var allowed []string
	maxSize := int64(5 * 1024 * 1024)
	if requirement != nil {
		allowed = requirement.AllowedTypes
		if requirement.MaxSizeMB > 0 {
			maxSize = int64(requirement.MaxSizeMB) * 1024 * 1024
		}
	}
	if !utils.AllowedFileExt(ext, allowed) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		return
	}
	if file.Size > maxSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds the limit"})
		return
	}

	dir, err := utils.TenantDir(me.UniversityID, "documents")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory"})
		return
	}
	fullPath := filepath.Join(dir, utils.SafeFilename(file.Filename))
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	// Replace any earlier upload for the same requirement.
	config.DB.Where("application_id = ? AND name = ?", application.ID, name).
		Delete(&models.Document{})

	document := models.Document{
		ID:            uuid.NewString(),
		UniversityID:  me.UniversityID,
		StudentID:     me.ID,
		ApplicationID: application.ID,
		Name:          name,
		FileName:      file.Filename,
		FileURL:       utils.RelativeURL(fullPath),
		FileType:      ext,
		FileSize:      file.Size,
		Status:        models.DocumentUploaded,
	}
	if err := config.DB.Create(&document).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record document"})
		return
	}

	if !application.CompletedSteps.Contains(models.StepDocuments) {
		application.MarkStepCompleted(models.StepDocuments,
			services.NextStep(university.RegistrationConfig, models.StepDocuments))
		if application.Status == models.AppStatusDraft {
			application.Status = models.AppStatusInProgress
		}
		config.DB.Save(&application)
	}

	if application.LeadID != "" {
		entry := services.NewTimelineEntry(models.EventDocumentUploaded,
			"Document uploaded: "+name, me.ID, me.Name, nil)
		services.AppendLeadEvent(config.DB, application.LeadID, nil, entry)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Document uploaded", "document": document})
}

// GetMyDocuments returns the calling student's uploads.
func GetMyDocuments(c *gin.Context) {
	me := currentActor(c)

	var documents []models.Document
	if err := config.DB.Where("student_id = ? AND university_id = ?", me.ID, me.UniversityID).
		Order("created_at DESC").Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents, "total": len(documents)})
}

// GetApplicationDocuments returns one application's uploads for staff.
func GetApplicationDocuments(c *gin.Context) {
	me := currentActor(c)

	var application models.Application
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&application).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	var documents []models.Document
	if err := config.DB.Where("application_id = ?", application.ID).
		Order("created_at DESC").Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents, "total": len(documents)})
}

// VerifyDocument marks one upload verified or rejected.
func VerifyDocument(c *gin.Context) {
	type VerifyDocumentRequest struct {
		Status          string `json:"status" binding:"required"`
		RejectionReason string `json:"rejection_reason"`
	}

	var req VerifyDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.DocumentVerified && req.Status != models.DocumentRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be verified or rejected"})
		return
	}
	if req.Status == models.DocumentRejected && req.RejectionReason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection reason is required"})
		return
	}

	me := currentActor(c)

	var document models.Document
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&document).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           req.Status,
		"verified_by":      me.ID,
		"verified_at":      now,
		"rejection_reason": req.RejectionReason,
	}
	if err := config.DB.Model(&document).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update document"})
		return
	}

	// A rejection reopens the documents step on the application.
	if req.Status == models.DocumentRejected {
		var application models.Application
		if err := config.DB.Where("id = ?", document.ApplicationID).First(&application).Error; err == nil &&
			application.SubmittedAt == nil && application.CompletedSteps.Contains(models.StepDocuments) {
			steps := models.StringList{}
			for _, s := range application.CompletedSteps {
				if s != models.StepDocuments {
					steps = append(steps, s)
				}
			}
			config.DB.Model(&application).Updates(map[string]interface{}{
				"completed_steps": steps,
				"current_step":    models.StepDocuments,
			})
		}
	}

	if req.Status == models.DocumentVerified {
		var application models.Application
		if err := config.DB.Where("id = ?", document.ApplicationID).First(&application).Error; err == nil &&
			application.LeadID != "" {
			entry := services.NewTimelineEntry(models.EventDocumentVerified,
				"Document verified: "+document.Name, me.ID, me.Name, nil)
			services.AppendLeadEvent(config.DB, application.LeadID, nil, entry)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document " + req.Status})
}

// DeleteDocument removes one of the student's own uploads before submission.
func DeleteDocument(c *gin.Context) {
	me := currentActor(c)

	var document models.Document
	if err := config.DB.Where("id = ? AND student_id = ?", c.Param("id"), me.ID).
		First(&document).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if document.Status == models.DocumentVerified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verified documents cannot be deleted"})
		return
	}

	var application models.Application
	if err := config.DB.Where("id = ?", document.ApplicationID).First(&application).Error; err == nil &&
		application.SubmittedAt != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Application already submitted"})
		return
	}

	if err := config.DB.Delete(&document).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	// Best-effort file removal; a missing file is not an error.
	rel := strings.TrimPrefix(document.FileURL, "/uploads/")
	os.Remove(filepath.Join(utils.UploadRoot(), filepath.FromSlash(rel)))

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
