package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/stackmentor/backend/internal/llm"
	"github.com/stackmentor/backend/internal/metrics"
	"github.com/stackmentor/backend/internal/models"
	"github.com/stackmentor/backend/internal/prompts"
	"github.com/stackmentor/backend/internal/repository"
	"github.com/stackmentor/backend/pkg/logger"
)

var (
	ErrEmptyMessage    = errors.New("message content is empty")
	ErrSessionNotFound = errors.New("chat session not found")
	ErrForbidden       = errors.New("session does not belong to user")
)

// fallbackReply masks a transient model failure as a graceful assistant
// reply. It is returned to the caller but never recorded in the
// transcript.
const fallbackReply = "I'm experiencing some technical difficulties right now. " +
	"Please try again in a moment, or rephrase your question."

const titleWordLimit = 6

// ChatService assembles the bounded model prompt from profile, tech stack
// and recent history, invokes the model, and records both sides of the
// exchange.
type ChatService struct {
	sessionRepo *repository.SessionRepository
	userRepo    *repository.UserRepository
	techRepo    *repository.TechnologyRepository
	model       llm.Client
	prompts     *prompts.Builder

	historyWindow int
	modelTimeout  time.Duration
}

func NewChatService(
	sessionRepo *repository.SessionRepository,
	userRepo *repository.UserRepository,
	techRepo *repository.TechnologyRepository,
	model llm.Client,
	promptBuilder *prompts.Builder,
	historyWindow int,
	modelTimeout time.Duration,
) *ChatService {
	return &ChatService{
		sessionRepo:   sessionRepo,
		userRepo:      userRepo,
		techRepo:      techRepo,
		model:         model,
		prompts:       promptBuilder,
		historyWindow: historyWindow,
		modelTimeout:  modelTimeout,
	}
}

func (s *ChatService) CreateSession(userID uuid.UUID) (*models.ChatSession, error) {
	session := &models.ChatSession{
		ID:     uuid.New(),
		UserID: userID,
		Title:  "New Chat",
	}
	if err := s.sessionRepo.CreateSession(session); err != nil {
		logger.Log.Error("Failed to create chat session",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Chat session created",
		zap.String("session_id", session.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return session, nil
}

func (s *ChatService) ListSessions(userID uuid.UUID, limit int) ([]models.ChatSession, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.sessionRepo.ListSessionsByUser(userID, limit)
}

// GetSessionMessages returns a session's transcript after verifying
// ownership.
func (s *ChatService) GetSessionMessages(userID, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	if _, err := s.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetMessages(sessionID)
}

func (s *ChatService) DeleteSession(userID, sessionID uuid.UUID) error {
	if _, err := s.ownedSession(userID, sessionID); err != nil {
		return err
	}
	return s.sessionRepo.SoftDeleteSession(sessionID)
}

// SendResult is the outcome of one chat turn.
type SendResult struct {
	SessionID        uuid.UUID
	Reply            string
	Degraded         bool
	UserMessage      *models.ChatMessage
	AssistantMessage *models.ChatMessage
}

// SendMessage runs the full turn: validate, assemble, invoke, record.
//
// Validation and the ownership check happen before any model call. If the
// model call fails after retries, nothing is persisted and the caller
// receives a degraded assistant-style reply. If persistence fails after a
// successful model call, the reply is still returned and the
// inconsistency is logged (availability over consistency for transcript
// data).
func (s *ChatService) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, content string) (*SendResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	techs, err := s.techRepo.GetUserTechnologies(userID)
	if err != nil {
		return nil, err
	}

	history, err := s.sessionRepo.GetRecentMessages(session.ID, s.historyWindow)
	if err != nil {
		return nil, err
	}

	prompt := s.prompts.ChatPrompt(prompts.ChatPromptInput{
		User:         user,
		Technologies: techs,
		History:      history,
		UserMessage:  content,
	})

	callCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.ModelLatency.WithLabelValues("chat"))
	reply, err := s.model.Generate(callCtx, prompt)
	timer.ObserveDuration()

	if err != nil {
		metrics.ModelRequests.WithLabelValues("chat", "degraded").Inc()
		logger.Log.Warn("Model call failed, returning degraded reply",
			zap.String("session_id", session.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return &SendResult{
			SessionID: session.ID,
			Reply:     fallbackReply,
			Degraded:  true,
		}, nil
	}
	metrics.ModelRequests.WithLabelValues("chat", "success").Inc()

	title := ""
	if session.LastSeq == 0 {
		title = deriveTitle(content)
	}

	userMsg, assistantMsg, err := s.sessionRepo.AppendExchange(session.ID, content, reply, title)
	if err != nil {
		// The reply was already generated; losing the transcript entry is
		// preferable to losing the answer.
		logger.Log.Error("Model reply generated but exchange not persisted",
			zap.String("session_id", session.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return &SendResult{
			SessionID: session.ID,
			Reply:     reply,
		}, nil
	}
	metrics.ExchangesRecorded.Inc()

	return &SendResult{
		SessionID:        session.ID,
		Reply:            reply,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// ownedSession loads a session and enforces that it belongs to userID.
// The ownership check is explicit rather than folded into the query so it
// can distinguish NotFound from Forbidden.
func (s *ChatService) ownedSession(userID, sessionID uuid.UUID) (*models.ChatSession, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

// deriveTitle builds a session title from the first words of the opening
// message.
func deriveTitle(content string) string {
	words := strings.Fields(content)
	if len(words) <= titleWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWordLimit], " ") + "..."
}
