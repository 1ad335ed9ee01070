package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackmentor/backend/internal/models"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(session *models.ChatSession) error {
	return r.db.Create(session).Error
}

func (r *SessionRepository) GetSessionByID(id uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// ListSessionsByUser returns the user's sessions, most recently active first.
func (r *SessionRepository) ListSessionsByUser(userID uuid.UUID, limit int) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := r.db.
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// GetMessages returns the full transcript of a session in sequence order.
// Sequence order is authoritative; creation timestamps are not trusted
// for ordering.
func (r *SessionRepository) GetMessages(sessionID uuid.UUID) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&messages).Error
	return messages, err
}

// GetRecentMessages returns the last `limit` messages of a session in
// sequence order. Older messages stay stored but are excluded.
func (r *SessionRepository) GetRecentMessages(sessionID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("seq DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse back into ascending sequence order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// AppendExchange durably records one user turn and its assistant reply as
// a single atomic unit. Sequence numbers are taken from the session's
// last_seq counter; the in-place UPDATE takes a row lock, so two
// concurrent exchanges on the same session cannot be assigned the same
// numbers. firstTitle is applied only when this is the session's first
// exchange.
func (r *SessionRepository) AppendExchange(sessionID uuid.UUID, userContent, assistantContent, firstTitle string) (*models.ChatMessage, *models.ChatMessage, error) {
	var userMsg, assistantMsg models.ChatMessage

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ChatSession{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{"last_seq": gorm.Expr("last_seq + ?", 2)})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var session models.ChatSession
		if err := tx.Where("id = ?", sessionID).First(&session).Error; err != nil {
			return err
		}

		if session.LastSeq == 2 && firstTitle != "" {
			if err := tx.Model(&session).Update("title", firstTitle).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		userMsg = models.ChatMessage{
			ID:        uuid.New(),
			SessionID: sessionID,
			Role:      models.RoleUser,
			Content:   userContent,
			Seq:       session.LastSeq - 1,
			CreatedAt: now,
		}
		assistantMsg = models.ChatMessage{
			ID:        uuid.New(),
			SessionID: sessionID,
			Role:      models.RoleAssistant,
			Content:   assistantContent,
			Seq:       session.LastSeq,
			CreatedAt: now,
		}

		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}
		return tx.Create(&assistantMsg).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return &userMsg, &assistantMsg, nil
}

// SoftDeleteSession marks a session as deleted. The transcript stays in
// place until the pruner purges it.
func (r *SessionRepository) SoftDeleteSession(id uuid.UUID) error {
	return r.db.Delete(&models.ChatSession{}, "id = ?", id).Error
}

// PurgeSessionsDeletedBefore hard-deletes soft-deleted sessions older than
// the cutoff, together with their messages. Returns the number of purged
// sessions.
func (r *SessionRepository) PurgeSessionsDeletedBefore(cutoff time.Time) (int64, error) {
	var purged int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		err := tx.Unscoped().Model(&models.ChatSession{}).
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("session_id IN ?", ids).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}

		res := tx.Unscoped().Where("id IN ?", ids).Delete(&models.ChatSession{})
		purged = res.RowsAffected
		return res.Error
	})

	return purged, err
}
