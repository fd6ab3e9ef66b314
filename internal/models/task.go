package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "Backlog"
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

// ValidStatus reports whether s is one of the four task statuses
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

// ValidPriority reports whether p is one of the four task priorities
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// IssueType represents the kind of issue a task tracks
type IssueType string

const (
	TypeStory IssueType = "Story"
	TypeTask  IssueType = "Task"
	TypeBug   IssueType = "Bug"
	TypeEpic  IssueType = "Epic"
)

// ValidIssueType reports whether t is one of the four issue types
func ValidIssueType(t IssueType) bool {
	switch t {
	case TypeStory, TypeTask, TypeBug, TypeEpic:
		return true
	}
	return false
}

// Attachment is a file reference stored on a task
type Attachment struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// IssueLink is a directional reference from one task to another.
// No reciprocal link is created on the target task.
type IssueLink struct {
	Type         string `json:"type"`
	LinkedTaskID uint   `json:"linkedTaskId"`
}

// Task represents a tracked unit of work, optionally decomposed into
// subtasks via ParentTaskID. Time fields are in minutes.
type Task struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Title             string         `json:"title" gorm:"not null"`
	Description       string         `json:"description"`
	Status            TaskStatus     `json:"status" gorm:"not null;default:'Todo'"`
	Priority          TaskPriority   `json:"priority" gorm:"default:'Medium'"`
	IssueType         IssueType      `json:"issueType" gorm:"column:issue_type;default:'Task'"`
	AssigneeID        *uint          `json:"assigneeId" gorm:"column:assignee_id;index"`
	ReporterID        uint           `json:"reporterId" gorm:"column:reporter_id"`
	ProjectID         uint           `json:"projectId" gorm:"column:project_id;not null;index"`
	ParentTaskID      *uint          `json:"parentTaskId" gorm:"column:parent_task_id;index"`
	DueDate           *string        `json:"dueDate" gorm:"column:due_date"`
	Labels            []string       `json:"labels" gorm:"serializer:json"`
	Attachments       []Attachment   `json:"attachments" gorm:"serializer:json"`
	IssueLinks        []IssueLink    `json:"issueLinks" gorm:"column:issue_links;serializer:json"`
	Watchers          []uint         `json:"watchers" gorm:"serializer:json"`
	StoryPoints       *int           `json:"storyPoints" gorm:"column:story_points"`
	OriginalEstimate  *int           `json:"originalEstimate" gorm:"column:original_estimate"`
	RemainingEstimate *int           `json:"remainingEstimate" gorm:"column:remaining_estimate"`
	TimeSpent         int            `json:"timeSpent" gorm:"column:time_spent;default:0"`
	TimerStartTime    *time.Time     `json:"timerStartTime" gorm:"column:timer_start_time"`
	LastHeartbeatAt   *time.Time     `json:"lastHeartbeatAt" gorm:"column:last_heartbeat_at"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`

	// Enriched for responses, not persisted
	Assignee *PublicUser `json:"assignee,omitempty" gorm:"-"`
	Reporter *PublicUser `json:"reporter,omitempty" gorm:"-"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// TimerRunning reports whether the task has an active timer
func (t Task) TimerRunning() bool {
	return t.TimerStartTime != nil
}
