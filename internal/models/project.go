package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxProjectMembers caps how many users may join a single project.
const MaxProjectMembers = 8

// Project groups tasks under a single owner and optional team leader
type Project struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Description  string         `json:"description"`
	Template     string         `json:"template" gorm:"default:'Kanban'"`
	OwnerID      uint           `json:"ownerId" gorm:"column:owner_id;not null"`
	TeamLeaderID *uint          `json:"teamLeaderId" gorm:"column:team_leader_id"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Enriched for responses, not persisted
	Owner      *PublicUser `json:"owner,omitempty" gorm:"-"`
	TeamLeader *PublicUser `json:"teamLeader,omitempty" gorm:"-"`
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}

// ProjectMember is the membership join row between users and projects
type ProjectMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProjectID uint      `json:"projectId" gorm:"column:project_id;not null;index"`
	UserID    uint      `json:"userId" gorm:"column:user_id;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for ProjectMember Model
func (ProjectMember) TableName() string {
	return "project_members"
}
