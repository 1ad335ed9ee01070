package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackmentor/backend/internal/models"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) CreateQuestion(q *models.InterviewQuestion) error {
	return r.db.Create(q).Error
}

// GetByQuestionText returns an existing question with identical text, if
// any. The generator reuses it instead of storing a duplicate.
func (r *QuestionRepository) GetByQuestionText(text string) (*models.InterviewQuestion, error) {
	var q models.InterviewQuestion
	err := r.db.Where("question = ?", text).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

// QuestionFilter narrows saved-question listings.
type QuestionFilter struct {
	Category        string
	DifficultyLevel string
	TechStack       string
	Limit           int
}

// ListQuestions returns saved questions, newest first.
func (r *QuestionRepository) ListQuestions(f QuestionFilter) ([]models.InterviewQuestion, error) {
	q := r.db.Model(&models.InterviewQuestion{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.DifficultyLevel != "" {
		q = q.Where("difficulty_level = ?", f.DifficultyLevel)
	}
	if f.TechStack != "" {
		q = q.Where("tech_stack LIKE ?", "%"+f.TechStack+"%")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	var questions []models.InterviewQuestion
	err := q.Order("created_at DESC").Limit(limit).Find(&questions).Error
	return questions, err
}

// QuestionStats summarizes the saved question pool.
type QuestionStats struct {
	Total         int64            `json:"total_questions"`
	ByCategory    map[string]int64 `json:"categories"`
	ByDifficulty  map[string]int64 `json:"difficulty_levels"`
	RelevantCount int64            `json:"relevant_to_user_tech_stack"`
}

// GetStats aggregates counts overall, per category, per difficulty, and
// how many questions mention one of the given technology names.
func (r *QuestionRepository) GetStats(techNames []string) (*QuestionStats, error) {
	stats := &QuestionStats{
		ByCategory:   make(map[string]int64),
		ByDifficulty: make(map[string]int64),
	}

	if err := r.db.Model(&models.InterviewQuestion{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byCategory []bucket
	err := r.db.Model(&models.InterviewQuestion{}).
		Select("category AS key, COUNT(*) AS count").
		Group("category").
		Scan(&byCategory).Error
	if err != nil {
		return nil, err
	}
	for _, b := range byCategory {
		stats.ByCategory[b.Key] = b.Count
	}

	var byDifficulty []bucket
	err = r.db.Model(&models.InterviewQuestion{}).
		Select("difficulty_level AS key, COUNT(*) AS count").
		Group("difficulty_level").
		Scan(&byDifficulty).Error
	if err != nil {
		return nil, err
	}
	for _, b := range byDifficulty {
		stats.ByDifficulty[b.Key] = b.Count
	}

	for _, name := range techNames {
		var count int64
		err := r.db.Model(&models.InterviewQuestion{}).
			Where("tech_stack LIKE ?", "%"+name+"%").
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		stats.RelevantCount += count
	}

	return stats, nil
}

// ListQuestionsByUser returns questions generated for a specific user.
func (r *QuestionRepository) ListQuestionsByUser(userID uuid.UUID, limit int) ([]models.InterviewQuestion, error) {
	if limit <= 0 {
		limit = 20
	}
	var questions []models.InterviewQuestion
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}
