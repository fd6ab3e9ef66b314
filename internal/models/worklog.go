package models

import "time"

// WorkLog records a span of time spent on a task, in minutes. Entries
// are created by manual logging or timer-stop conversion and are never
// mutated, only created or deleted.
type WorkLog struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TaskID      uint      `json:"taskId" gorm:"column:task_id;not null;index"`
	UserID      uint      `json:"userId" gorm:"column:user_id;not null"`
	TimeSpent   int       `json:"timeSpent" gorm:"column:time_spent;not null"`
	StartedAt   time.Time `json:"startedAt" gorm:"column:started_at"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`

	// Enriched for responses, not persisted
	Author *PublicUser `json:"author,omitempty" gorm:"-"`
}

// TableName specifies the table name for WorkLog Model
func (WorkLog) TableName() string {
	return "work_logs"
}
