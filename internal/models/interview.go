package models

import (
	"time"

	"github.com/google/uuid"
)

// Question categories form a closed set. Anything the model returns
// outside of it is repaired before persisting.
const (
	CategoryTechnical      = "Technical"
	CategorySystemDesign   = "System Design"
	CategoryBehavioral     = "Behavioral"
	CategoryCoding         = "Coding"
	CategoryProblemSolving = "Problem Solving"
)

// QuestionCategories lists the allowed categories in display order.
var QuestionCategories = []string{
	CategoryTechnical,
	CategorySystemDesign,
	CategoryBehavioral,
	CategoryCoding,
	CategoryProblemSolving,
}

const (
	LevelJunior = "Junior"
	LevelMid    = "Mid-level"
	LevelSenior = "Senior"
	LevelLead   = "Lead/Principal"
)

// DifficultyLevels lists the allowed levels from least to most senior.
var DifficultyLevels = []string{LevelJunior, LevelMid, LevelSenior, LevelLead}

// InterviewQuestion is immutable once created by the generator.
type InterviewQuestion struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Question        string     `gorm:"type:text;not null" json:"question"`
	Category        string     `gorm:"type:varchar(32);not null;index" json:"category"`
	DifficultyLevel string     `gorm:"type:varchar(32);not null;index" json:"difficulty_level"`
	TechStack       string     `gorm:"type:varchar(255)" json:"tech_stack,omitempty"`
	ExpectedAnswer  string     `gorm:"type:text" json:"expected_answer,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (InterviewQuestion) TableName() string {
	return "interview_questions"
}

// ValidCategory reports whether c is in the closed category set.
func ValidCategory(c string) bool {
	for _, known := range QuestionCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ExperienceLevel maps years of experience onto a difficulty level.
func ExperienceLevel(years int) string {
	switch {
	case years <= 2:
		return LevelJunior
	case years <= 5:
		return LevelMid
	case years <= 10:
		return LevelSenior
	default:
		return LevelLead
	}
}
