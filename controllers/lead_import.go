package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admissions-api/config"
	"admissions-api/models"
	"admissions-api/services"
)

// BulkUploadLeads imports a parsed spreadsheet of leads. Rows are tallied
// individually; a bad row never fails the batch.
func BulkUploadLeads(c *gin.Context) {
	type BulkUploadRequest struct {
		FileName string                   `json:"file_name"`
		Rows     []map[string]interface{} `json:"rows" binding:"required,min=1"`
	}

	var req BulkUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	importer := services.LeadImporter{DB: config.DB}
	summary := importer.Import(me.UniversityID, models.SourceBulkUpload, req.FileName, req.Rows, me.ID, me.Name)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Bulk upload finished",
		"created":    summary.Created,
		"failed":     summary.Failed,
		"duplicates": summary.Duplicates,
	})
}

// importFromAggregator handles the named third-party lead feeds.
func importFromAggregator(c *gin.Context, source string) {
	type AggregatorImportRequest struct {
		Leads []map[string]interface{} `json:"leads" binding:"required,min=1"`
	}

	var req AggregatorImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	me := currentActor(c)

	importer := services.LeadImporter{DB: config.DB}
	summary := importer.Import(me.UniversityID, source, source, req.Leads, me.ID, me.Name)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Import finished",
		"source":     source,
		"created":    summary.Created,
		"failed":     summary.Failed,
		"duplicates": summary.Duplicates,
	})
}

func ImportShikshaLeads(c *gin.Context) {
	importFromAggregator(c, models.SourceShiksha)
}

func ImportCollegeduniaLeads(c *gin.Context) {
	importFromAggregator(c, models.SourceCollegedunia)
}

// LeadImportWebhook receives leads pushed by external portals. The caller
// authenticates with the university's lead import API key instead of a JWT.
func LeadImportWebhook(c *gin.Context) {
	apiKey := c.GetHeader("X-API-Key")
	if apiKey == "" {
		apiKey = c.Query("api_key")
	}
	if apiKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing API key"})
		return
	}

	var university models.University
	if err := config.DB.
		Where("JSON_UNQUOTE(JSON_EXTRACT(integration_settings, '$.lead_import_api_key')) = ?", apiKey).
		First(&university).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		return
	}
	if !university.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "University is inactive"})
		return
	}

	type WebhookRequest struct {
		Source string                   `json:"source"`
		Leads  []map[string]interface{} `json:"leads" binding:"required,min=1"`
	}

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source := models.SourceOtherAPI
	details := req.Source
	if details == "" {
		details = c.Query("source")
	}
	if details == "" {
		details = "webhook"
	}

	importer := services.LeadImporter{DB: config.DB}
	summary := importer.Import(university.ID, source, details, req.Leads, "system", "API Webhook")

	c.JSON(http.StatusOK, gin.H{
		"message":    "Leads received",
		"created":    summary.Created,
		"failed":     summary.Failed,
		"duplicates": summary.Duplicates,
	})
}
