package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
	"admissions-api/utils"
)

// StudentRegister creates a student account against one university and,
// in the same transaction, the lead and draft application that track it.
func StudentRegister(c *gin.Context) {
	type StudentRegisterRequest struct {
		UniversityCode string `json:"university_code" binding:"required"`
		Name           string `json:"name" binding:"required"`
		Email          string `json:"email" binding:"required,email"`
		Phone          string `json:"phone"`
		Password       string `json:"password" binding:"required"`
	}

	var req StudentRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if ok, reason := utils.ValidatePassword(req.Password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	var university models.University
	if err := config.DB.Where("code = ? AND is_active = ?", req.UniversityCode, true).
		First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	var count int64
	config.DB.Model(&models.User{}).
		Where("university_id = ? AND email = ?", university.ID, req.Email).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An account with this email already exists"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	student := models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Role:         models.RoleStudent,
		UniversityID: university.ID,
		Phone:        req.Phone,
		IsActive:     true,
		PasswordHash: hash,
	}

	application := models.Application{
		ID:                uuid.NewString(),
		UniversityID:      university.ID,
		StudentID:         student.ID,
		ApplicationNumber: newApplicationNumber(),
		Status:            models.AppStatusDraft,
		CurrentStep:       models.StepBasicInfo,
		CompletedSteps:    models.StringList{},
	}
	if university.RegistrationConfig.FeeEnabled {
		application.FeeAmountPaise = university.RegistrationConfig.FeeAmountPaise
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&student).Error; err != nil {
			return err
		}

		// Link to an existing lead rather than duplicating it.
		var lead models.Lead
		leadErr := tx.Where("university_id = ? AND (email = ? OR (phone <> '' AND phone = ?))",
			university.ID, req.Email, req.Phone).First(&lead).Error
		if leadErr == gorm.ErrRecordNotFound {
			lead = models.Lead{
				ID:           uuid.NewString(),
				UniversityID: university.ID,
				Name:         req.Name,
				Email:        req.Email,
				Phone:        req.Phone,
				Source:       models.SourceWebsite,
				Stage:        models.StageNewLead,
				Timeline: models.TimelineEntries{services.NewTimelineEntry(
					models.EventCreated, "Student registered on the portal", student.ID, student.Name, nil,
				)},
			}
			if err := tx.Create(&lead).Error; err != nil {
				return err
			}
		} else if leadErr != nil {
			return leadErr
		}

		application.LeadID = lead.ID
		if err := tx.Create(&application).Error; err != nil {
			return err
		}

		return tx.Model(&models.Lead{}).Where("id = ?", lead.ID).
			Update("application_id", application.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		return
	}

	services.SendWelcomeEmail(student.Email, student.Name, university.Name,
		services.EmailContext{UniversityID: university.ID, UserID: student.ID, ApplicationID: application.ID})

	token, err := generateToken(student)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Registration successful",
		"token":       token,
		"user":        student,
		"application": application,
	})
}

// GetRegistrationConfig returns the public wizard configuration for one
// university, so the frontend can render the right steps.
func GetRegistrationConfig(c *gin.Context) {
	var university models.University
	if err := config.DB.Where("code = ? AND is_active = ?", c.Param("code"), true).
		First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	cfg := university.RegistrationConfig
	steps := append(cfg.RequiredSteps(), models.StepFinalSubmission)

	c.JSON(http.StatusOK, gin.H{
		"university_id":       university.ID,
		"university_name":     university.Name,
		"registration_config": cfg,
		"steps":               steps,
	})
}

// GetUniversityInfo returns the public CMS page content for one university.
func GetUniversityInfo(c *gin.Context) {
	var university models.University
	if err := config.DB.Where("code = ? AND is_active = ?", c.Param("code"), true).
		First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	var courses []models.Course
	config.DB.Where("university_id = ? AND is_active = ?", university.ID, true).
		Order("name").Find(&courses)
	var departments []models.Department
	config.DB.Where("university_id = ? AND is_active = ?", university.ID, true).
		Order("name").Find(&departments)

	c.JSON(http.StatusOK, gin.H{
		"university": gin.H{
			"id":         university.ID,
			"name":       university.Name,
			"code":       university.Code,
			"about":      university.About,
			"website":    university.Website,
			"address":    university.Address,
			"logo_url":   university.LogoURL,
			"facilities": university.Facilities,
			"gallery":    university.Gallery,
			"brochures":  university.Brochures,
		},
		"courses":     courses,
		"departments": departments,
	})
}

// PublicUniversities lists the active universities students can apply to.
func PublicUniversities(c *gin.Context) {
	var universities []models.University
	if err := config.DB.Where("is_active = ?", true).
		Order("name").Find(&universities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch universities"})
		return
	}

	list := make([]gin.H, 0, len(universities))
	for _, u := range universities {
		list = append(list, gin.H{
			"id":       u.ID,
			"name":     u.Name,
			"code":     u.Code,
			"logo_url": u.LogoURL,
			"website":  u.Website,
		})
	}

	c.JSON(http.StatusOK, gin.H{"universities": list, "total": len(list)})
}
