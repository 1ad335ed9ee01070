package models

import (
	"time"

	"github.com/google/uuid"
)

// Technology is seeded reference data. Rows are never owned by a user,
// only referenced through UserTechnology.
type Technology struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Category    string    `gorm:"type:varchar(50);not null;index" json:"category"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserTechnology joins users to their selected technologies.
// The composite primary key guarantees a (user, technology) pair
// appears at most once.
type UserTechnology struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TechnologyID uint      `gorm:"primaryKey"`
	CreatedAt    time.Time
}

func (UserTechnology) TableName() string {
	return "user_technologies"
}
