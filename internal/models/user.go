package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered user in the system
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Email     string         `json:"email" gorm:"unique;not null"`
	Password  string         `json:"-" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// PublicUser is the safe projection of a user for API responses
type PublicUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Public returns the response-safe projection of the user
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name}
}
