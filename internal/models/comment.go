package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is an immutable note on a task; removal only, no edits
type Comment struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Content   string         `json:"content" gorm:"not null"`
	TaskID    uint           `json:"taskId" gorm:"column:task_id;not null;index"`
	UserID    uint           `json:"userId" gorm:"column:user_id;not null"`
	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Enriched for responses, not persisted
	Author *PublicUser `json:"author,omitempty" gorm:"-"`
}

// TableName specifies the table name for Comment Model
func (Comment) TableName() string {
	return "comments"
}
