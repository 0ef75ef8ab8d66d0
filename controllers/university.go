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

// GetRegistrationSettings returns the tenant's registration configuration.
func GetRegistrationSettings(c *gin.Context) {
	me := currentActor(c)

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"registration_config":  university.RegistrationConfig,
		"razorpay_config":      university.RazorpayConfig,
		"integration_settings": university.IntegrationSettings,
	})
}

// UpdateRegistrationConfig updates the wizard-step flags for the tenant.
func UpdateRegistrationConfig(c *gin.Context) {
	type ConfigUpdateRequest struct {
		EducationalDetailsEnabled *bool                         `json:"educational_details_enabled"`
		EducationalFields         *[]string                     `json:"educational_fields"`
		DocumentsEnabled          *bool                         `json:"documents_enabled"`
		RequiredDocuments         *[]models.DocumentRequirement `json:"required_documents"`
		EntranceTestEnabled       *bool                         `json:"entrance_test_enabled"`
		FeeEnabled                *bool                         `json:"fee_enabled"`
		FeeAmountPaise            *int64                        `json:"fee_amount_paise"`
		RefundAllowed             *bool                         `json:"refund_allowed"`
	}

	var req ConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	cfg := university.RegistrationConfig
	if req.EducationalDetailsEnabled != nil {
		cfg.EducationalDetailsEnabled = *req.EducationalDetailsEnabled
	}
	if req.EducationalFields != nil {
		cfg.EducationalFields = *req.EducationalFields
	}
	if req.DocumentsEnabled != nil {
		cfg.DocumentsEnabled = *req.DocumentsEnabled
	}
	if req.RequiredDocuments != nil {
		cfg.RequiredDocuments = *req.RequiredDocuments
	}
	if req.EntranceTestEnabled != nil {
		cfg.EntranceTestEnabled = *req.EntranceTestEnabled
	}
	if req.FeeEnabled != nil {
		cfg.FeeEnabled = *req.FeeEnabled
	}
	if req.FeeAmountPaise != nil {
		if *req.FeeAmountPaise < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fee amount cannot be negative"})
			return
		}
		cfg.FeeAmountPaise = *req.FeeAmountPaise
	}
	if req.RefundAllowed != nil {
		cfg.RefundAllowed = *req.RefundAllowed
	}

	if err := config.DB.Model(&university).Update("registration_config", cfg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update configuration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Configuration updated", "registration_config": cfg})
}

// UpdateUniversityProfile updates the tenant's public CMS content.
func UpdateUniversityProfile(c *gin.Context) {
	type ProfileUpdateRequest struct {
		About      *string            `json:"about"`
		Website    *string            `json:"website"`
		Facilities *[]string          `json:"facilities"`
		Brochures  *[]models.Brochure `json:"brochures"`
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.About != nil {
		updates["about"] = *req.About
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.Facilities != nil {
		updates["facilities"] = models.StringList(*req.Facilities)
	}
	if req.Brochures != nil {
		updates["brochures"] = models.BrochureList(*req.Brochures)
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&university).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// UploadGalleryImage stores one gallery image under the tenant's folder.
func UploadGalleryImage(c *gin.Context) {
	me := currentActor(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if !utils.AllowedFileExt(ext, []string{"jpg", "jpeg", "png", "webp"}) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		return
	}
	if file.Size > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 5MB limit"})
		return
	}

	dir, err := utils.TenantDir(me.UniversityID, "gallery")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload directory"})
		return
	}

	fullPath := filepath.Join(dir, utils.SafeFilename(file.Filename))
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	url := utils.RelativeURL(fullPath)

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}
	gallery := append(university.Gallery, url)
	if err := config.DB.Model(&university).Update("gallery", gallery).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update gallery"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Image uploaded", "url": url})
}

// DeleteGalleryImage removes one image URL from the tenant's gallery.
func DeleteGalleryImage(c *gin.Context) {
	type DeleteImageRequest struct {
		URL string `json:"url" binding:"required"`
	}

	var req DeleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var university models.University
	if err := config.DB.Where("id = ?", me.UniversityID).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	gallery := models.StringList{}
	found := false
	for _, url := range university.Gallery {
		if url == req.URL {
			found = true
			continue
		}
		gallery = append(gallery, url)
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	if err := config.DB.Model(&university).Update("gallery", gallery).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update gallery"})
		return
	}

	// Best-effort file removal; a missing file is not an error.
	rel := strings.TrimPrefix(req.URL, "/uploads/")
	os.Remove(filepath.Join(utils.UploadRoot(), filepath.FromSlash(rel)))

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// CreateStaff creates a counsellor or counselling manager account.
func CreateStaff(c *gin.Context) {
	type CreateStaffRequest struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		Role     string `json:"role" binding:"required"`
		PersonID string `json:"person_id" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}

	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role != models.RoleCounsellor && req.Role != models.RoleCounsellingManager {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be counsellor or counselling_manager"})
		return
	}

	me := currentActor(c)

	var count int64
	config.DB.Model(&models.User{}).
		Where("university_id = ? AND (email = ? OR person_id = ?)", me.UniversityID, req.Email, req.PersonID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this email or person id already exists"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create staff"})
		return
	}

	staff := models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		UniversityID: me.UniversityID,
		PersonID:     &req.PersonID,
		Phone:        req.Phone,
		IsActive:     true,
		PasswordHash: hash,
	}

	if err := config.DB.Create(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create staff"})
		return
	}

	services.SendCredentialsEmail(staff.Email, staff.Name, req.Role, req.PersonID, req.Password,
		services.EmailContext{UniversityID: me.UniversityID, UserID: staff.ID})

	c.JSON(http.StatusCreated, gin.H{"message": "Staff created", "user": staff})
}

// ListStaff returns the tenant's staff accounts.
func ListStaff(c *gin.Context) {
	me := currentActor(c)

	query := config.DB.Where("university_id = ? AND role IN ?", me.UniversityID, models.StaffRoles)
	if role := c.Query("role"); role != "" {
		query = config.DB.Where("university_id = ? AND role = ?", me.UniversityID, role)
	}

	var staff []models.User
	if err := query.Order("created_at").Find(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch staff"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": staff, "total": len(staff)})
}

// ResetStaffPassword sets a new password for a staff account.
func ResetStaffPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var staff models.User
	if err := config.DB.Where("id = ? AND university_id = ? AND role IN ?",
		c.Param("id"), me.UniversityID, models.StaffRoles).First(&staff).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff member not found"})
		return
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&staff).Updates(map[string]interface{}{
		"password_hash": hash,
		"updated_at":    now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
