package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
)

// CreateQuery opens a new student question thread.
func CreateQuery(c *gin.Context) {
	type CreateQueryRequest struct {
		Subject string `json:"subject" binding:"required"`
		Message string `json:"message" binding:"required"`
	}

	var req CreateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	query := models.StudentQuery{
		ID:           uuid.NewString(),
		UniversityID: me.UniversityID,
		StudentID:    me.ID,
		StudentName:  me.Name,
		StudentEmail: me.Email,
		Subject:      req.Subject,
		Status:       models.QueryPending,
		Messages: models.QueryMessageList{{
			ID:         uuid.NewString(),
			SenderID:   me.ID,
			SenderName: me.Name,
			SenderRole: models.RoleStudent,
			Content:    req.Message,
			CreatedAt:  time.Now().UTC(),
		}},
	}

	if err := config.DB.Create(&query).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create query"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Query created", "query": query})
}

// GetMyQueries returns the calling student's threads.
func GetMyQueries(c *gin.Context) {
	me := currentActor(c)

	var queries []models.StudentQuery
	if err := config.DB.Where("student_id = ? AND university_id = ?", me.ID, me.UniversityID).
		Order("updated_at DESC").Find(&queries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch queries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queries": queries, "total": len(queries)})
}

// GetAssignedQueries returns threads claimed by the calling counsellor,
// plus the unclaimed pool.
func GetAssignedQueries(c *gin.Context) {
	me := currentActor(c)

	var queries []models.StudentQuery
	if err := config.DB.Where("university_id = ? AND (counsellor_id = ? OR counsellor_id = '')",
		me.UniversityID, me.ID).
		Order("updated_at DESC").Find(&queries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch queries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queries": queries, "total": len(queries)})
}

// ListQueries returns tenant threads for managers and admins.
func ListQueries(c *gin.Context) {
	me := currentActor(c)

	query := config.DB.Model(&models.StudentQuery{}).Where("university_id = ?", me.UniversityID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	page, limit := pageParams(c)
	var queries []models.StudentQuery
	if err := query.Order("updated_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&queries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch queries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queries": queries, "total": total, "page": page, "limit": limit})
}

// GetQuery returns one thread. Students only see their own.
func GetQuery(c *gin.Context) {
	me := currentActor(c)

	dbq := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID)
	if me.Role == models.RoleStudent {
		dbq = dbq.Where("student_id = ?", me.ID)
	}

	var query models.StudentQuery
	if err := dbq.First(&query).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Query not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"query": query})
}

// ReplyToQuery appends a message to a thread. The first staff reply
// claims the thread for that counsellor.
func ReplyToQuery(c *gin.Context) {
	type ReplyRequest struct {
		Message string `json:"message" binding:"required"`
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	dbq := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID)
	if me.Role == models.RoleStudent {
		dbq = dbq.Where("student_id = ?", me.ID)
	}

	var query models.StudentQuery
	if err := dbq.First(&query).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Query not found"})
		return
	}
	if query.Status == models.QueryClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is closed"})
		return
	}

	message := models.QueryMessage{
		ID:         uuid.NewString(),
		SenderID:   me.ID,
		SenderName: me.Name,
		SenderRole: me.Role,
		Content:    req.Message,
		CreatedAt:  time.Now().UTC(),
	}

	updates := map[string]interface{}{
		"messages": append(query.Messages, message),
	}
	if me.Role != models.RoleStudent {
		updates["status"] = models.QueryReplied
		if query.CounsellorID == "" {
			updates["counsellor_id"] = me.ID
			updates["counsellor_name"] = me.Name
		}
	} else {
		updates["status"] = models.QueryPending
	}

	if err := config.DB.Model(&query).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reply"})
		return
	}

	// Mirror staff replies onto the student's lead timeline.
	if me.Role != models.RoleStudent {
		var lead models.Lead
		if err := config.DB.Where("university_id = ? AND email = ?",
			me.UniversityID, query.StudentEmail).First(&lead).Error; err == nil {
			entry := services.NewTimelineEntry(models.EventChatMessage,
				"Replied to query: "+query.Subject, me.ID, me.Name, nil)
			services.AppendLeadEvent(config.DB, lead.ID, nil, entry)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reply sent"})
}

// UpdateQueryStatus closes or reopens a thread.
func UpdateQueryStatus(c *gin.Context) {
	type StatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.QueryPending && req.Status != models.QueryReplied && req.Status != models.QueryClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	me := currentActor(c)

	var query models.StudentQuery
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&query).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Query not found"})
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.QueryClosed {
		now := time.Now()
		updates["closed_at"] = now
	} else {
		updates["closed_at"] = nil
	}

	if err := config.DB.Model(&query).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}
