package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"admissions-api/models"
)

// ImportRow is one normalized inbound lead record.
type ImportRow struct {
	Name           string
	Email          string
	Phone          string
	Campaign       string
	InquiryDetails string
	CourseInterest string
}

// ImportSummary tallies one batch import. Created + Failed + Duplicates
// always equals the number of input rows.
type ImportSummary struct {
	Created    int `json:"created"`
	Failed     int `json:"failed"`
	Duplicates int `json:"duplicates"`
}

// ParseImportRow normalizes a raw third-party payload row; aggregators
// use differing field names for the same data.
func ParseImportRow(raw map[string]interface{}) ImportRow {
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := raw[k].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}
	return ImportRow{
		Name:           str("name", "student_name"),
		Email:          str("email", "student_email"),
		Phone:          str("phone", "mobile"),
		Campaign:       str("campaign"),
		InquiryDetails: str("inquiry_details"),
		CourseInterest: str("course_interest", "course"),
	}
}

// Valid reports whether the row carries enough identity to become a lead:
// a name plus at least one of email or phone.
func (r ImportRow) Valid() bool {
	return r.Name != "" && (r.Email != "" || r.Phone != "")
}

// LeadImporter inserts leads from bulk uploads, named-source imports and
// webhooks. Rows are processed independently: a bad row never aborts the
// batch.
type LeadImporter struct {
	DB *gorm.DB
}

// Import runs one best-effort batch for the given university and source.
func (li *LeadImporter) Import(universityID, source, sourceDetails string, rows []map[string]interface{}, actorID, actorName string) ImportSummary {
	var summary ImportSummary

	for _, raw := range rows {
		row := ParseImportRow(raw)
		if !row.Valid() {
			summary.Failed++
			continue
		}

		dup, err := li.isDuplicate(universityID, row.Email, row.Phone)
		if err != nil {
			log.Printf("lead import: duplicate check failed: %v", err)
			summary.Failed++
			continue
		}
		if dup {
			summary.Duplicates++
			continue
		}

		lead := models.Lead{
			ID:            uuid.NewString(),
			UniversityID:  universityID,
			Name:          row.Name,
			Email:         row.Email,
			Phone:         row.Phone,
			Source:        source,
			SourceDetails: sourceDetails,
			Stage:         models.StageNewLead,
		}

		if row.InquiryDetails != "" {
			lead.Notes = models.NoteList{{
				ID:            uuid.NewString(),
				Content:       fmt.Sprintf("Inquiry via %s: %s", source, row.InquiryDetails),
				CreatedBy:     "system",
				CreatedByName: "System Import",
				CreatedAt:     time.Now().UTC(),
			}}
		}

		lead.Timeline = models.TimelineEntries{NewTimelineEntry(
			models.EventCreated,
			fmt.Sprintf("Lead imported from %s", source),
			actorID,
			actorName,
			map[string]interface{}{"source": source, "campaign": row.Campaign},
		)}

		if err := li.DB.Create(&lead).Error; err != nil {
			log.Printf("lead import: insert failed: %v", err)
			summary.Failed++
			continue
		}
		summary.Created++
	}

	return summary
}

func (li *LeadImporter) isDuplicate(universityID, email, phone string) (bool, error) {
	query := li.DB.Model(&models.Lead{}).Where("university_id = ?", universityID)
	switch {
	case email != "" && phone != "":
		query = query.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		query = query.Where("phone = ?", phone)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
