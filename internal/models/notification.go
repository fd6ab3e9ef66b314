package models

import "time"

// NotificationType is the closed set of notification kinds
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
	NotifyMention NotificationType = "mention"
)

// Notification is a per-user message created by assignment and mention
// events. Only the read flag is ever mutated after creation.
type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"userId" gorm:"column:user_id;not null;index"`
	Type      NotificationType `json:"type" gorm:"default:'info'"`
	Title     string           `json:"title" gorm:"not null"`
	Message   string           `json:"message"`
	Link      string           `json:"link"`
	Read      bool             `json:"read" gorm:"default:false"`
	CreatedAt time.Time        `json:"createdAt"`
}

// TableName specifies the table name for Notification Model
func (Notification) TableName() string {
	return "notifications"
}
