package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackmentor/backend/internal/models"
)

type TechnologyRepository struct {
	db *gorm.DB
}

func NewTechnologyRepository(db *gorm.DB) *TechnologyRepository {
	return &TechnologyRepository{db: db}
}

// ListTechnologies returns catalog entries, optionally filtered by category.
func (r *TechnologyRepository) ListTechnologies(category string) ([]models.Technology, error) {
	var techs []models.Technology
	q := r.db.Order("category, name")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&techs).Error
	return techs, err
}

// ListCategories returns the distinct catalog categories.
func (r *TechnologyRepository) ListCategories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Technology{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// CountByIDs counts how many of the given catalog ids exist. Used to
// validate a selection before replacing it.
func (r *TechnologyRepository) CountByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.Technology{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

// GetUserTechnologies returns the user's selected technologies ordered by
// category then name, so prompt assembly is deterministic.
func (r *TechnologyRepository) GetUserTechnologies(userID uuid.UUID) ([]models.Technology, error) {
	var techs []models.Technology
	err := r.db.
		Joins("JOIN user_technologies ON user_technologies.technology_id = technologies.id").
		Where("user_technologies.user_id = ?", userID).
		Order("technologies.category, technologies.name").
		Find(&techs).Error
	return techs, err
}

// ReplaceUserTechnologies swaps the user's selection for the given ids in
// one transaction, so a concurrent reader never observes the emptied
// intermediate state.
func (r *TechnologyRepository) ReplaceUserTechnologies(userID uuid.UUID, ids []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserTechnology{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		now := time.Now()
		rows := make([]models.UserTechnology, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, models.UserTechnology{
				UserID:       userID,
				TechnologyID: id,
				CreatedAt:    now,
			})
		}
		return tx.Create(&rows).Error
	})
}
