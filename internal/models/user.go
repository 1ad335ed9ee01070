package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username          string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email             string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash      string         `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	FullName          string         `gorm:"type:varchar(100)" json:"full_name"`
	YearsOfExperience int            `gorm:"not null;default:0" json:"years_of_experience"`
	CurrentRole       string         `gorm:"type:varchar(100)" json:"current_role"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
