package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
)

// CreateUniversity registers a new tenant with default configuration.
func CreateUniversity(c *gin.Context) {
	type CreateUniversityRequest struct {
		Name             string `json:"name" binding:"required"`
		Code             string `json:"code" binding:"required"`
		Email            string `json:"email" binding:"required,email"`
		Phone            string `json:"phone" binding:"required"`
		Address          string `json:"address" binding:"required"`
		Website          string `json:"website"`
		SubscriptionPlan string `json:"subscription_plan"`
	}

	var req CreateUniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	config.DB.Model(&models.University{}).Where("code = ?", req.Code).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "University code already exists"})
		return
	}

	plan := req.SubscriptionPlan
	if plan == "" {
		plan = "basic"
	}

	university := models.University{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		Code:               req.Code,
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		Website:            req.Website,
		SubscriptionPlan:   plan,
		SubscriptionStatus: "active",
		RegistrationConfig: models.DefaultRegistrationConfig(),
		RazorpayConfig: models.RazorpayConfig{
			AccountStatus: "pending",
			KYCStatus:     "pending",
		},
		IsActive: true,
	}

	if err := config.DB.Create(&university).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create university"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "University created successfully",
		"university": university,
	})
}

// ListUniversities returns all tenants, optionally filtered by status.
func ListUniversities(c *gin.Context) {
	query := config.DB.Model(&models.University{})
	if status := c.Query("subscription_status"); status != "" {
		query = query.Where("subscription_status = ?", status)
	}

	var universities []models.University
	if err := query.Order("created_at DESC").Find(&universities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch universities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"universities": universities,
		"total":        len(universities),
	})
}

// GetUniversity returns one tenant.
func GetUniversity(c *gin.Context) {
	var university models.University
	if err := config.DB.Where("id = ?", c.Param("id")).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"university": university})
}

// UpdateUniversity updates tenant fields managed by the platform.
func UpdateUniversity(c *gin.Context) {
	type UpdateUniversityRequest struct {
		Name               *string `json:"name"`
		Email              *string `json:"email"`
		Phone              *string `json:"phone"`
		Address            *string `json:"address"`
		Website            *string `json:"website"`
		SubscriptionPlan   *string `json:"subscription_plan"`
		SubscriptionStatus *string `json:"subscription_status"`
		IsActive           *bool   `json:"is_active"`
	}

	var req UpdateUniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var university models.University
	if err := config.DB.Where("id = ?", c.Param("id")).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.SubscriptionPlan != nil {
		updates["subscription_plan"] = *req.SubscriptionPlan
	}
	if req.SubscriptionStatus != nil {
		updates["subscription_status"] = *req.SubscriptionStatus
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&university).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update university"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "University updated", "university": university})
}

// CreateUniversityAdmin creates the admin account for a tenant.
func CreateUniversityAdmin(c *gin.Context) {
	type CreateAdminRequest struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		PersonID string `json:"person_id" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}

	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var university models.University
	if err := config.DB.Where("id = ?", c.Param("id")).First(&university).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "University not found"})
		return
	}

	var count int64
	config.DB.Model(&models.User{}).
		Where("university_id = ? AND (email = ? OR person_id = ?)", university.ID, req.Email, req.PersonID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A user with this email or person id already exists"})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin"})
		return
	}

	admin := models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Role:         models.RoleUniversityAdmin,
		UniversityID: university.ID,
		PersonID:     &req.PersonID,
		Phone:        req.Phone,
		IsActive:     true,
		PasswordHash: hash,
	}

	if err := config.DB.Create(&admin).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin"})
		return
	}

	services.SendCredentialsEmail(admin.Email, admin.Name, models.RoleUniversityAdmin,
		req.PersonID, req.Password, services.EmailContext{UniversityID: university.ID, UserID: admin.ID})

	c.JSON(http.StatusCreated, gin.H{"message": "University admin created", "user": admin})
}

// PlatformStats returns platform-wide entity counts.
func PlatformStats(c *gin.Context) {
	var universities, users, leads, applications, payments int64
	config.DB.Model(&models.University{}).Count(&universities)
	config.DB.Model(&models.User{}).Count(&users)
	config.DB.Model(&models.Lead{}).Count(&leads)
	config.DB.Model(&models.Application{}).Count(&applications)
	config.DB.Model(&models.Payment{}).Count(&payments)

	c.JSON(http.StatusOK, gin.H{
		"universities": universities,
		"users":        users,
		"leads":        leads,
		"applications": applications,
		"payments":     payments,
	})
}

// ListEmailLogs returns notification mail history.
func ListEmailLogs(c *gin.Context) {
	page, limit := pageParams(c)

	query := config.DB.Model(&models.EmailLog{})
	if t := c.Query("email_type"); t != "" {
		query = query.Where("email_type = ?", t)
	}
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}
	if u := c.Query("university_id"); u != "" {
		query = query.Where("university_id = ?", u)
	}

	var total int64
	query.Count(&total)

	var logs []models.EmailLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch email logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email_logs": logs,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

// PaymentsOverview aggregates per-university payment totals.
func PaymentsOverview(c *gin.Context) {
	type universityRow struct {
		UniversityID   string `json:"university_id"`
		UniversityName string `json:"university_name"`
		TotalCollected int64  `json:"total_collected_paise"`
		Successful     int64  `json:"successful_payments"`
		Failed         int64  `json:"failed_payments"`
		TotalRefunded  int64  `json:"total_refunded_paise"`
	}

	var rows []universityRow
	err := config.DB.Model(&models.Payment{}).
		Select(`payments.university_id,
			universities.name AS university_name,
			SUM(CASE WHEN payments.status IN ('success','refunded','partially_refunded') THEN payments.amount_paise ELSE 0 END) AS total_collected,
			SUM(CASE WHEN payments.status IN ('success','refunded','partially_refunded') THEN 1 ELSE 0 END) AS successful,
			SUM(CASE WHEN payments.status = 'failed' THEN 1 ELSE 0 END) AS failed,
			SUM(payments.refund_amount_paise) AS total_refunded`).
		Joins("JOIN universities ON universities.id = payments.university_id").
		Group("payments.university_id, universities.name").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments overview"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"universities": rows})
}
