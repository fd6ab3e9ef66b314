package tracking

import (
	"issue-tracker-api/internal/models"

	"gorm.io/gorm"
)

// Notify creates one notification record for a recipient. Delivery is
// the store write itself; there are no retries beyond it.
func Notify(db *gorm.DB, userID uint, typ models.NotificationType, title, message, link string) error {
	notification := models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    link,
	}
	return db.Create(&notification).Error
}
