package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a staff account that can sign in to the back office
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role         string         `gorm:"not null;default:'staff'" json:"role"` // "staff" or "admin"
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
