package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"admissions-api/config"
	"admissions-api/models"
)

// stageCount is one row of the leads-by-stage aggregate.
type stageCount struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

// CounsellingDashboard summarizes the tenant's pipeline for managers
// and university admins.
func CounsellingDashboard(c *gin.Context) {
	me := currentActor(c)

	var totalLeads int64
	config.DB.Model(&models.Lead{}).Where("university_id = ?", me.UniversityID).Count(&totalLeads)

	var unassigned int64
	config.DB.Model(&models.Lead{}).
		Where("university_id = ? AND assigned_to = ''", me.UniversityID).Count(&unassigned)

	var byStage []stageCount
	config.DB.Model(&models.Lead{}).
		Select("stage, COUNT(*) as count").
		Where("university_id = ?", me.UniversityID).
		Group("stage").Scan(&byStage)

	var byCounsellor []struct {
		CounsellorID   string `json:"counsellor_id"`
		CounsellorName string `json:"counsellor_name"`
		Count          int64  `json:"count"`
	}
	config.DB.Model(&models.Lead{}).
		Select("assigned_to as counsellor_id, assigned_to_name as counsellor_name, COUNT(*) as count").
		Where("university_id = ? AND assigned_to <> ''", me.UniversityID).
		Group("assigned_to, assigned_to_name").Scan(&byCounsellor)

	var overdueFollowUps int64
	config.DB.Model(&models.Lead{}).
		Where("university_id = ? AND next_follow_up < ?", me.UniversityID, time.Now()).
		Count(&overdueFollowUps)

	var totalApplications, submittedApplications int64
	config.DB.Model(&models.Application{}).
		Where("university_id = ?", me.UniversityID).Count(&totalApplications)
	config.DB.Model(&models.Application{}).
		Where("university_id = ? AND status = ?", me.UniversityID, models.AppStatusSubmitted).
		Count(&submittedApplications)

	var pendingQueries int64
	config.DB.Model(&models.StudentQuery{}).
		Where("university_id = ? AND status = ?", me.UniversityID, models.QueryPending).
		Count(&pendingQueries)

	var collectedPaise int64
	config.DB.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount_paise), 0)").
		Where("university_id = ? AND status = ?", me.UniversityID, models.PaymentSuccess).
		Scan(&collectedPaise)

	c.JSON(http.StatusOK, gin.H{
		"total_leads":            totalLeads,
		"unassigned_leads":       unassigned,
		"leads_by_stage":         byStage,
		"leads_by_counsellor":    byCounsellor,
		"overdue_follow_ups":     overdueFollowUps,
		"total_applications":     totalApplications,
		"submitted_applications": submittedApplications,
		"pending_queries":        pendingQueries,
		"collected_paise":        collectedPaise,
	})
}

// CounsellorDashboard summarizes the calling counsellor's own workload.
func CounsellorDashboard(c *gin.Context) {
	me := currentActor(c)

	var myLeads int64
	config.DB.Model(&models.Lead{}).
		Where("university_id = ? AND assigned_to = ?", me.UniversityID, me.ID).
		Count(&myLeads)

	var byStage []stageCount
	config.DB.Model(&models.Lead{}).
		Select("stage, COUNT(*) as count").
		Where("university_id = ? AND assigned_to = ?", me.UniversityID, me.ID).
		Group("stage").Scan(&byStage)

	now := time.Now()
	var dueToday int64
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	config.DB.Model(&models.Lead{}).
		Where("university_id = ? AND assigned_to = ? AND next_follow_up >= ? AND next_follow_up < ?",
			me.UniversityID, me.ID, startOfDay, startOfDay.AddDate(0, 0, 1)).
		Count(&dueToday)

	var overdue int64
	config.DB.Model(&models.Lead{}).
		Where("university_id = ? AND assigned_to = ? AND next_follow_up < ?",
			me.UniversityID, me.ID, now).
		Count(&overdue)

	var myQueries int64
	config.DB.Model(&models.StudentQuery{}).
		Where("university_id = ? AND counsellor_id = ? AND status <> ?",
			me.UniversityID, me.ID, models.QueryClosed).
		Count(&myQueries)

	c.JSON(http.StatusOK, gin.H{
		"my_leads":             myLeads,
		"leads_by_stage":       byStage,
		"follow_ups_due_today": dueToday,
		"follow_ups_overdue":   overdue,
		"open_queries":         myQueries,
	})
}
