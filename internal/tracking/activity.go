package tracking

import (
	"issue-tracker-api/internal/models"

	"gorm.io/gorm"
)

// LogActivity appends one immutable audit record for a task. Rows are
// never updated after creation; the trail is ordered by created_at.
func LogActivity(db *gorm.DB, taskID, actorID uint, typ models.ActivityType, description string) error {
	activity := models.Activity{
		TaskID:      taskID,
		UserID:      actorID,
		Type:        typ,
		Description: description,
	}
	return db.Create(&activity).Error
}
