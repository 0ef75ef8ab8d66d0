package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
)

// CreateLead records one manually captured lead.
func CreateLead(c *gin.Context) {
	type CreateLeadRequest struct {
		Name                   string                 `json:"name" binding:"required"`
		Email                  string                 `json:"email"`
		Phone                  string                 `json:"phone"`
		Source                 string                 `json:"source"`
		SourceDetails          string                 `json:"source_details"`
		InterestedCourseID     string                 `json:"interested_course_id"`
		InterestedDepartmentID string                 `json:"interested_department_id"`
		Tags                   []string               `json:"tags"`
		CustomFields           map[string]interface{} `json:"custom_fields"`
	}

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email == "" && req.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either email or phone is required"})
		return
	}

	me := currentActor(c)

	dupQuery := config.DB.Model(&models.Lead{}).Where("university_id = ?", me.UniversityID)
	switch {
	case req.Email != "" && req.Phone != "":
		dupQuery = dupQuery.Where("email = ? OR phone = ?", req.Email, req.Phone)
	case req.Email != "":
		dupQuery = dupQuery.Where("email = ?", req.Email)
	default:
		dupQuery = dupQuery.Where("phone = ?", req.Phone)
	}
	var count int64
	dupQuery.Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A lead with this email or phone already exists"})
		return
	}

	source := req.Source
	if source == "" {
		source = models.SourceManual
	}

	lead := models.Lead{
		ID:                     uuid.NewString(),
		UniversityID:           me.UniversityID,
		Name:                   req.Name,
		Email:                  req.Email,
		Phone:                  req.Phone,
		Source:                 source,
		SourceDetails:          req.SourceDetails,
		Stage:                  models.StageNewLead,
		InterestedCourseID:     req.InterestedCourseID,
		InterestedDepartmentID: req.InterestedDepartmentID,
		Tags:                   models.StringList(req.Tags),
		CustomFields:           datatypes.JSONMap(req.CustomFields),
		Timeline: models.TimelineEntries{services.NewTimelineEntry(
			models.EventCreated, "Lead created", me.ID, me.Name, nil,
		)},
	}

	if err := config.DB.Create(&lead).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Lead created", "lead": lead})
}

// ListLeads returns leads for the tenant. Counsellors only see leads
// assigned to them; managers and admins see everything.
func ListLeads(c *gin.Context) {
	me := currentActor(c)

	query := config.DB.Model(&models.Lead{}).Where("university_id = ?", me.UniversityID)
	if me.Role == models.RoleCounsellor {
		query = query.Where("assigned_to = ?", me.ID)
	}

	if stage := c.Query("stage"); stage != "" {
		query = query.Where("stage = ?", stage)
	}
	if source := c.Query("source"); source != "" {
		query = query.Where("source = ?", source)
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" && me.Role != models.RoleCounsellor {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	query.Count(&total)

	page, limit := pageParams(c)
	var leads []models.Lead
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&leads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// leadForActor loads one lead with tenant and counsellor scoping applied.
func leadForActor(me actor, leadID string) (*models.Lead, error) {
	query := config.DB.Where("id = ? AND university_id = ?", leadID, me.UniversityID)
	if me.Role == models.RoleCounsellor {
		query = query.Where("assigned_to = ?", me.ID)
	}
	var lead models.Lead
	if err := query.First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetLead returns one lead with its full timeline, notes and follow-ups.
func GetLead(c *gin.Context) {
	me := currentActor(c)

	lead, err := leadForActor(me, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

// UpdateLeadStage moves a lead through the pipeline and records the
// transition on the timeline.
func UpdateLeadStage(c *gin.Context) {
	type StageUpdateRequest struct {
		Stage  string `json:"stage" binding:"required"`
		Reason string `json:"reason"`
	}

	var req StageUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.LeadStages[req.Stage] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown stage: " + req.Stage})
		return
	}

	me := currentActor(c)

	lead, err := leadForActor(me, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}
	if lead.Stage == req.Stage {
		c.JSON(http.StatusOK, gin.H{"message": "Stage unchanged", "lead": lead})
		return
	}

	entry := services.NewTimelineEntry(
		models.EventStageChanged,
		fmt.Sprintf("Stage changed from %s to %s", lead.Stage, req.Stage),
		me.ID, me.Name,
		map[string]interface{}{"from": lead.Stage, "to": req.Stage, "reason": req.Reason},
	)
	if err := services.AppendLeadEvent(config.DB, lead.ID, map[string]interface{}{"stage": req.Stage}, entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stage updated"})
}

// AssignLead assigns or reassigns a lead to a counsellor.
func AssignLead(c *gin.Context) {
	type AssignLeadRequest struct {
		CounsellorID string `json:"counsellor_id" binding:"required"`
	}

	var req AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	var lead models.Lead
	if err := config.DB.Where("id = ? AND university_id = ?", c.Param("id"), me.UniversityID).
		First(&lead).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	var counsellor models.User
	if err := config.DB.Where("id = ? AND university_id = ? AND role = ? AND is_active = ?",
		req.CounsellorID, me.UniversityID, models.RoleCounsellor, true).
		First(&counsellor).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Counsellor not found"})
		return
	}

	eventType := models.EventAssigned
	description := fmt.Sprintf("Assigned to %s", counsellor.Name)
	if lead.AssignedTo != "" {
		eventType = models.EventReassigned
		description = fmt.Sprintf("Reassigned from %s to %s", lead.AssignedToName, counsellor.Name)
	}

	now := time.Now()
	entry := services.NewTimelineEntry(eventType, description, me.ID, me.Name,
		map[string]interface{}{"counsellor_id": counsellor.ID})
	updates := map[string]interface{}{
		"assigned_to":      counsellor.ID,
		"assigned_to_name": counsellor.Name,
		"assigned_at":      now,
	}
	if err := services.AppendLeadEvent(config.DB, lead.ID, updates, entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign lead"})
		return
	}

	services.SendLeadAssignmentEmail(counsellor.Email, counsellor.Name, lead.Name, lead.Email, lead.Phone,
		services.EmailContext{UniversityID: me.UniversityID, UserID: counsellor.ID, LeadID: lead.ID})

	c.JSON(http.StatusOK, gin.H{"message": "Lead assigned", "assigned_to": counsellor.Name})
}

// BulkReassignLeads moves a set of leads to one counsellor. Leads are
// processed independently and tallied per item.
func BulkReassignLeads(c *gin.Context) {
	type BulkReassignRequest struct {
		LeadIDs []string `json:"lead_ids"`
		// FromCounsellorID selects every lead of one counsellor when
		// lead_ids is empty.
		FromCounsellorID string `json:"from_counsellor_id"`
		CounsellorID     string `json:"counsellor_id" binding:"required"`
	}

	var req BulkReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.LeadIDs) == 0 && req.FromCounsellorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either lead_ids or from_counsellor_id is required"})
		return
	}

	me := currentActor(c)

	var counsellor models.User
	if err := config.DB.Where("id = ? AND university_id = ? AND role = ? AND is_active = ?",
		req.CounsellorID, me.UniversityID, models.RoleCounsellor, true).
		First(&counsellor).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Counsellor not found"})
		return
	}

	leadIDs := req.LeadIDs
	if len(leadIDs) == 0 {
		var ids []string
		config.DB.Model(&models.Lead{}).
			Where("university_id = ? AND assigned_to = ?", me.UniversityID, req.FromCounsellorID).
			Pluck("id", &ids)
		leadIDs = ids
	}

	now := time.Now()
	reassigned := 0
	failed := []string{}
	for _, leadID := range leadIDs {
		query := config.DB.Where("id = ? AND university_id = ?", leadID, me.UniversityID)
		if req.FromCounsellorID != "" {
			query = query.Where("assigned_to = ?", req.FromCounsellorID)
		}
		var lead models.Lead
		if err := query.First(&lead).Error; err != nil {
			failed = append(failed, leadID)
			continue
		}

		entry := services.NewTimelineEntry(
			models.EventReassigned,
			fmt.Sprintf("Reassigned to %s", counsellor.Name),
			me.ID, me.Name,
			map[string]interface{}{"counsellor_id": counsellor.ID, "bulk": true},
		)
		updates := map[string]interface{}{
			"assigned_to":      counsellor.ID,
			"assigned_to_name": counsellor.Name,
			"assigned_at":      now,
		}
		if err := services.AppendLeadEvent(config.DB, lead.ID, updates, entry); err != nil {
			failed = append(failed, leadID)
			continue
		}
		reassigned++
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Bulk reassignment finished",
		"reassigned": reassigned,
		"failed":     failed,
	})
}

// AddLeadNote appends a free-form note and mirrors it on the timeline.
func AddLeadNote(c *gin.Context) {
	type AddNoteRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	lead, err := leadForActor(me, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	note := models.Note{
		ID:            uuid.NewString(),
		Content:       req.Content,
		CreatedBy:     me.ID,
		CreatedByName: me.Name,
		CreatedAt:     time.Now().UTC(),
	}

	entry := services.NewTimelineEntry(models.EventNoteAdded, "Note added", me.ID, me.Name, nil)
	updates := map[string]interface{}{"notes": append(lead.Notes, note)}
	if err := services.AppendLeadEvent(config.DB, lead.ID, updates, entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add note"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Note added", "note": note})
}

// AddFollowUp schedules a follow-up on a lead.
func AddFollowUp(c *gin.Context) {
	type AddFollowUpRequest struct {
		ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
		Notes       string    `json:"notes"`
	}

	var req AddFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	lead, err := leadForActor(me, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	followUp := models.FollowUp{
		ID:          uuid.NewString(),
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
		CreatedBy:   me.ID,
		CreatedAt:   time.Now().UTC(),
	}

	updates := map[string]interface{}{
		"follow_ups": append(lead.FollowUps, followUp),
		"stage":      models.StageFollowUpScheduled,
	}
	if lead.NextFollowUp == nil || req.ScheduledAt.Before(*lead.NextFollowUp) {
		updates["next_follow_up"] = req.ScheduledAt
	}
	// Terminal stages are not pulled back into the follow-up pipeline.
	if lead.Stage == models.StageAdmissionConfirmed || lead.Stage == models.StageClosedLost {
		delete(updates, "stage")
	}

	entry := services.NewTimelineEntry(
		models.EventFollowUpSet,
		fmt.Sprintf("Follow-up scheduled for %s", req.ScheduledAt.Format(time.RFC3339)),
		me.ID, me.Name, nil,
	)
	if err := services.AppendLeadEvent(config.DB, lead.ID, updates, entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule follow-up"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Follow-up scheduled", "follow_up": followUp})
}

// CompleteFollowUp marks one scheduled follow-up as done.
func CompleteFollowUp(c *gin.Context) {
	me := currentActor(c)

	lead, err := leadForActor(me, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	followUpID := c.Param("followUpId")
	now := time.Now().UTC()

	found := false
	followUps := make(models.FollowUpList, len(lead.FollowUps))
	copy(followUps, lead.FollowUps)
	for i := range followUps {
		if followUps[i].ID == followUpID {
			if followUps[i].IsCompleted {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Follow-up already completed"})
				return
			}
			followUps[i].IsCompleted = true
			followUps[i].CompletedAt = &now
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Follow-up not found"})
		return
	}

	// Recompute the next pending follow-up, if any.
	var next *time.Time
	for i := range followUps {
		if followUps[i].IsCompleted {
			continue
		}
		if next == nil || followUps[i].ScheduledAt.Before(*next) {
			t := followUps[i].ScheduledAt
			next = &t
		}
	}

	updates := map[string]interface{}{
		"follow_ups":     followUps,
		"next_follow_up": next,
	}
	entry := services.NewTimelineEntry(models.EventFollowUpCompleted, "Follow-up completed", me.ID, me.Name, nil)
	if err := services.AppendLeadEvent(config.DB, lead.ID, updates, entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete follow-up"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Follow-up completed"})
}
