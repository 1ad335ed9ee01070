package service

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stackmentor/backend/internal/models"
	"github.com/stackmentor/backend/internal/repository"
	"github.com/stackmentor/backend/pkg/logger"
)

var ErrUnknownTechnology = errors.New("one or more technology ids are unknown")

type TechStackService struct {
	techRepo *repository.TechnologyRepository
}

func NewTechStackService(techRepo *repository.TechnologyRepository) *TechStackService {
	return &TechStackService{techRepo: techRepo}
}

// ListCatalog returns the seeded technology catalog, optionally filtered
// by category.
func (s *TechStackService) ListCatalog(category string) ([]models.Technology, error) {
	return s.techRepo.ListTechnologies(category)
}

func (s *TechStackService) ListCategories() ([]string, error) {
	return s.techRepo.ListCategories()
}

// GetSelection returns the user's current stack, ordered by category then
// name.
func (s *TechStackService) GetSelection(userID uuid.UUID) ([]models.Technology, error) {
	return s.techRepo.GetUserTechnologies(userID)
}

// ReplaceSelection validates every requested id against the catalog and
// then swaps the user's selection wholesale. Unknown ids reject the whole
// request and leave the existing selection untouched. Submitting the same
// set twice yields identical stored rows; an empty set clears the stack.
func (s *TechStackService) ReplaceSelection(userID uuid.UUID, ids []uint) ([]models.Technology, error) {
	ids = dedupe(ids)

	count, err := s.techRepo.CountByIDs(ids)
	if err != nil {
		logger.Log.Error("Failed to validate technology ids",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if count != int64(len(ids)) {
		logger.Log.Warn("Tech stack update rejected: unknown ids",
			zap.String("user_id", userID.String()),
			zap.Int("requested", len(ids)),
			zap.Int64("known", count),
		)
		return nil, ErrUnknownTechnology
	}

	if err := s.techRepo.ReplaceUserTechnologies(userID, ids); err != nil {
		logger.Log.Error("Failed to replace tech stack",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Tech stack updated",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(ids)),
	)

	return s.techRepo.GetUserTechnologies(userID)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
