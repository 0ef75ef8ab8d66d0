package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admissions-api/config"
	"admissions-api/models"
)

// CreateDepartment adds a department under the caller's university.
func CreateDepartment(c *gin.Context) {
	type CreateDepartmentRequest struct {
		Name         string `json:"name" binding:"required"`
		Code         string `json:"code" binding:"required"`
		Description  string `json:"description"`
		HeadName     string `json:"head_name"`
		ContactEmail string `json:"contact_email"`
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var count int64
	config.DB.Model(&models.Department{}).
		Where("university_id = ? AND code = ?", me.UniversityID, req.Code).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A department with this code already exists"})
		return
	}

	department := models.Department{
		ID:           uuid.NewString(),
		UniversityID: me.UniversityID,
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		HeadName:     req.HeadName,
		ContactEmail: req.ContactEmail,
		IsActive:     true,
	}

	if err := config.DB.Create(&department).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create department"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Department created", "department": department})
}

// ListDepartments returns the tenant's departments.
func ListDepartments(c *gin.Context) {
	me := currentActor(c)

	var departments []models.Department
	if err := config.DB.Where("university_id = ?", me.UniversityID).
		Order("name").Find(&departments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch departments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"departments": departments, "total": len(departments)})
}

// UpdateDepartment updates fields on one department.
func UpdateDepartment(c *gin.Context) {
	type UpdateDepartmentRequest struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		HeadName     *string `json:"head_name"`
		ContactEmail *string `json:"contact_email"`
		IsActive     *bool   `json:"is_active"`
	}

	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var department models.Department
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&department).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.HeadName != nil {
		updates["head_name"] = *req.HeadName
	}
	if req.ContactEmail != nil {
		updates["contact_email"] = *req.ContactEmail
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&department).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update department"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Department updated", "department": department})
}

// CreateCourse adds a course under one of the tenant's departments.
func CreateCourse(c *gin.Context) {
	type CreateCourseRequest struct {
		DepartmentID   string `json:"department_id" binding:"required"`
		Name           string `json:"name" binding:"required"`
		Code           string `json:"code" binding:"required"`
		DurationMonths int    `json:"duration_months"`
		Description    string `json:"description"`
		Eligibility    string `json:"eligibility"`
	}

	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var department models.Department
	if err := config.DB.Where("id = ? AND university_id = ?", req.DepartmentID, me.UniversityID).
		First(&department).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Department not found"})
		return
	}

	var count int64
	config.DB.Model(&models.Course{}).
		Where("university_id = ? AND code = ?", me.UniversityID, req.Code).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A course with this code already exists"})
		return
	}

	course := models.Course{
		ID:             uuid.NewString(),
		UniversityID:   me.UniversityID,
		DepartmentID:   req.DepartmentID,
		Name:           req.Name,
		Code:           req.Code,
		DurationMonths: req.DurationMonths,
		Description:    req.Description,
		Eligibility:    req.Eligibility,
		IsActive:       true,
	}

	if err := config.DB.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Course created", "course": course})
}

// ListCourses returns the tenant's courses, optionally by department.
func ListCourses(c *gin.Context) {
	me := currentActor(c)

	query := config.DB.Where("university_id = ?", me.UniversityID)
	if departmentID := c.Query("department_id"); departmentID != "" {
		query = query.Where("department_id = ?", departmentID)
	}

	var courses []models.Course
	if err := query.Order("name").Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses, "total": len(courses)})
}

// UpdateCourse updates fields on one course.
func UpdateCourse(c *gin.Context) {
	type UpdateCourseRequest struct {
		Name           *string `json:"name"`
		DurationMonths *int    `json:"duration_months"`
		Description    *string `json:"description"`
		Eligibility    *string `json:"eligibility"`
		IsActive       *bool   `json:"is_active"`
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var course models.Course
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&course).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.DurationMonths != nil {
		updates["duration_months"] = *req.DurationMonths
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Eligibility != nil {
		updates["eligibility"] = *req.Eligibility
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&course).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update course"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course updated", "course": course})
}

// CreateSession adds an admission intake window.
func CreateSession(c *gin.Context) {
	type CreateSessionRequest struct {
		Name      string     `json:"name" binding:"required"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date cannot be before start date"})
		return
	}

	me := currentActor(c)

	session := models.Session{
		ID:           uuid.NewString(),
		UniversityID: me.UniversityID,
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsActive:     true,
	}

	if err := config.DB.Create(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Session created", "session": session})
}

// ListSessions returns the tenant's admission sessions.
func ListSessions(c *gin.Context) {
	me := currentActor(c)

	var sessions []models.Session
	if err := config.DB.Where("university_id = ?", me.UniversityID).
		Order("created_at DESC").Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "total": len(sessions)})
}

// UpdateSession updates fields on one session.
func UpdateSession(c *gin.Context) {
	type UpdateSessionRequest struct {
		Name      *string    `json:"name"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
		IsActive  *bool      `json:"is_active"`
	}

	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var session models.Session
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&session).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&session).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session updated", "session": session})
}
