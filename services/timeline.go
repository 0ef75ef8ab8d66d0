package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"admissions-api/models"
)

// NewTimelineEntry builds a timeline entry stamped with the acting user.
func NewTimelineEntry(eventType, description, actorID, actorName string, metadata map[string]interface{}) models.TimelineEntry {
	return models.TimelineEntry{
		ID:            uuid.NewString(),
		EventType:     eventType,
		Description:   description,
		Metadata:      metadata,
		CreatedBy:     actorID,
		CreatedByName: actorName,
		CreatedAt:     time.Now().UTC(),
	}
}

// AppendLeadEvent applies the lead field updates and appends the timeline
// entry in a single transaction, so the mutable state and the audit trail
// cannot diverge. The timeline itself is append-only.
func AppendLeadEvent(db *gorm.DB, leadID string, updates map[string]interface{}, entry models.TimelineEntry) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var lead models.Lead
		if err := tx.Where("id = ?", leadID).First(&lead).Error; err != nil {
			return err
		}

		if updates == nil {
			updates = map[string]interface{}{}
		}
		updates["timeline"] = append(lead.Timeline, entry)
		updates["updated_at"] = time.Now()

		return tx.Model(&models.Lead{}).Where("id = ?", leadID).Updates(updates).Error
	})
}
