package testutil

import (
	"github.com/google/uuid"

	"github.com/stackmentor/backend/internal/models"
	"github.com/stackmentor/backend/internal/utils"
)

// CreateTestUser creates a test user with a hashed password.
func CreateTestUser(username, email, password string, years int) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:                uuid.New(),
		Username:          username,
		Email:             email,
		PasswordHash:      hashedPassword,
		FullName:          "Test User",
		YearsOfExperience: years,
		CurrentRole:       "Backend Developer",
	}, nil
}

// DefaultTestUser returns a mid-level test user.
func DefaultTestUser() (*models.User, error) {
	return CreateTestUser("testuser", "test@example.com", "Test123456", 4)
}

// CreateTestTechnology creates a catalog entry.
func CreateTestTechnology(name, category string) *models.Technology {
	return &models.Technology{
		Name:     name,
		Category: category,
	}
}

// CreateTestSession creates a chat session owned by userID.
func CreateTestSession(userID uuid.UUID) *models.ChatSession {
	return &models.ChatSession{
		ID:     uuid.New(),
		UserID: userID,
		Title:  "New Chat",
	}
}
