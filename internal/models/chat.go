package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatSession is one conversation thread owned by a single user.
// LastSeq is the per-session message counter; it is only ever advanced
// inside the recording transaction, which is what keeps sequence numbers
// gapless under concurrent sends.
type ChatSession struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string         `gorm:"type:varchar(255);not null;default:'New Chat'" json:"title"`
	LastSeq   int            `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage is an append-only log entry within a session. Seq starts
// at 1 and increases without gaps; the unique (session_id, seq) index
// rejects duplicates at the database level.
type ChatMessage struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_session_seq,priority:1" json:"session_id"`
	Role      MessageRole `gorm:"type:varchar(16);not null" json:"role"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	Seq       int         `gorm:"not null;uniqueIndex:idx_session_seq,priority:2" json:"seq"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
