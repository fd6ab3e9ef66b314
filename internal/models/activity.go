package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityType is the closed set of audit record kinds
type ActivityType string

const (
	ActivityCreate   ActivityType = "create"
	ActivityUpdate   ActivityType = "update"
	ActivityStatus   ActivityType = "status"
	ActivityPriority ActivityType = "priority"
	ActivityAssign   ActivityType = "assign"
	ActivityComment  ActivityType = "comment"
	ActivityWorklog  ActivityType = "worklog"
)

// Activity is one immutable audit entry describing a change on a task.
// Rows are append-only and ordered by creation time.
type Activity struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"userId" gorm:"column:user_id;not null;index"`
	TaskID      uint           `json:"taskId" gorm:"column:task_id;not null;index"`
	Type        ActivityType   `json:"type" gorm:"not null"`
	Description string         `json:"description" gorm:"not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Enriched for responses, not persisted
	Actor *PublicUser `json:"actor,omitempty" gorm:"-"`
	Task  *TaskRef    `json:"task,omitempty" gorm:"-"`
}

// TableName specifies the table name for Activity Model
func (Activity) TableName() string {
	return "activities"
}

// TaskRef is a minimal task reference embedded in activity responses
type TaskRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}
