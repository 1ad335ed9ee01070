package service

import (
	"context"
	"encoding/json"
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
	ErrInvalidInterviewRequest = errors.New("invalid interview request")
	ErrGenerationParse         = errors.New("model output could not be parsed into questions")
)

const (
	defaultQuestionCount = 5
	maxQuestionCount     = 20
	practiceSetCount     = 10
	maxFocusAreas        = 5
)

// InterviewService generates structured question sets from the user's
// profile and tech stack. It shares the load-assemble-invoke shape with
// the chat path but parses the model output into typed records instead of
// returning free text.
type InterviewService struct {
	questionRepo *repository.QuestionRepository
	userRepo     *repository.UserRepository
	techRepo     *repository.TechnologyRepository
	model        llm.Client
	prompts      *prompts.Builder
	modelTimeout time.Duration
}

func NewInterviewService(
	questionRepo *repository.QuestionRepository,
	userRepo *repository.UserRepository,
	techRepo *repository.TechnologyRepository,
	model llm.Client,
	promptBuilder *prompts.Builder,
	modelTimeout time.Duration,
) *InterviewService {
	return &InterviewService{
		questionRepo: questionRepo,
		userRepo:     userRepo,
		techRepo:     techRepo,
		model:        model,
		prompts:      promptBuilder,
		modelTimeout: modelTimeout,
	}
}

// GenerateRequest parameterizes question generation. TechStack, when
// empty, falls back to the user's stored selection.
type GenerateRequest struct {
	YearsOfExperience int
	TargetRole        string
	FocusAreas        []string
	NumQuestions      int
	TechStack         []string
}

// QuestionSet is the generation result together with the request context
// it was produced from.
type QuestionSet struct {
	Questions   []models.InterviewQuestion `json:"questions"`
	UserContext map[string]interface{}     `json:"user_context"`
}

// Generate produces exactly req.NumQuestions persisted questions, each
// with a category from the closed set. A short or malformed model
// response is retried once for the remainder; if the set is still
// incomplete the whole operation fails with ErrGenerationParse rather
// than silently returning fewer questions.
func (s *InterviewService) Generate(ctx context.Context, userID uuid.UUID, req GenerateRequest) (*QuestionSet, error) {
	if req.NumQuestions == 0 {
		req.NumQuestions = defaultQuestionCount
	}
	if err := validateGenerateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	techStack := req.TechStack
	if len(techStack) == 0 {
		techs, err := s.techRepo.GetUserTechnologies(userID)
		if err != nil {
			return nil, err
		}
		for _, t := range techs {
			techStack = append(techStack, t.Name)
		}
	}

	focusAreas := req.FocusAreas
	if len(focusAreas) == 0 {
		if len(techStack) > maxFocusAreas {
			focusAreas = techStack[:maxFocusAreas]
		} else {
			focusAreas = techStack
		}
	}

	level := models.ExperienceLevel(req.YearsOfExperience)
	promptInput := prompts.InterviewPromptInput{
		NumQuestions:    req.NumQuestions,
		TargetRole:      req.TargetRole,
		ExperienceLevel: level,
		Years:           req.YearsOfExperience,
		TechStack:       techStack,
		FocusAreas:      focusAreas,
	}

	parsed, err := s.generateParsed(ctx, promptInput, level)
	if err != nil {
		return nil, err
	}

	// One retry to fill the gap when the model under-delivered.
	if len(parsed) < req.NumQuestions {
		logger.Log.Warn("Model returned fewer questions than requested, retrying remainder",
			zap.Int("requested", req.NumQuestions),
			zap.Int("parsed", len(parsed)),
		)
		retryInput := promptInput
		retryInput.NumQuestions = req.NumQuestions - len(parsed)
		more, err := s.generateParsed(ctx, retryInput, level)
		if err != nil {
			return nil, err
		}
		parsed = mergeQuestions(parsed, more)
	}

	if len(parsed) < req.NumQuestions {
		return nil, ErrGenerationParse
	}
	parsed = parsed[:req.NumQuestions]

	questions, err := s.persistQuestions(userID, parsed)
	if err != nil {
		return nil, err
	}

	return &QuestionSet{
		Questions: questions,
		UserContext: map[string]interface{}{
			"years_of_experience": req.YearsOfExperience,
			"target_role":         req.TargetRole,
			"tech_stack":          techStack,
			"focus_areas":         focusAreas,
			"current_role":        user.CurrentRole,
			"username":            user.Username,
		},
	}, nil
}

// PracticeSet generates a fixed-size set from the stored profile alone.
func (s *InterviewService) PracticeSet(ctx context.Context, userID uuid.UUID) (*QuestionSet, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	targetRole := user.CurrentRole
	if targetRole == "" {
		targetRole = "Software Engineer"
	}

	return s.Generate(ctx, userID, GenerateRequest{
		YearsOfExperience: user.YearsOfExperience,
		TargetRole:        targetRole,
		NumQuestions:      practiceSetCount,
	})
}

func (s *InterviewService) ListSaved(filter repository.QuestionFilter) ([]models.InterviewQuestion, error) {
	if filter.Category != "" && !models.ValidCategory(filter.Category) {
		return nil, ErrInvalidInterviewRequest
	}
	return s.questionRepo.ListQuestions(filter)
}

// ListMine returns questions generated for this user, newest first.
func (s *InterviewService) ListMine(userID uuid.UUID, limit int) ([]models.InterviewQuestion, error) {
	return s.questionRepo.ListQuestionsByUser(userID, limit)
}

func (s *InterviewService) Stats(userID uuid.UUID) (*repository.QuestionStats, []string, error) {
	techs, err := s.techRepo.GetUserTechnologies(userID)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(techs))
	for _, t := range techs {
		names = append(names, t.Name)
	}

	stats, err := s.questionRepo.GetStats(names)
	if err != nil {
		return nil, nil, err
	}
	return stats, names, nil
}

// parsedQuestion is a validated, repaired model question before persistence.
type parsedQuestion struct {
	Question        string
	Category        string
	DifficultyLevel string
	TechStack       string
	ExpectedAnswer  string
}

// generateParsed runs one model call and parses its output, dropping
// malformed entries.
func (s *InterviewService) generateParsed(ctx context.Context, in prompts.InterviewPromptInput, level string) ([]parsedQuestion, error) {
	prompt := s.prompts.InterviewPrompt(in)

	callCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.ModelLatency.WithLabelValues("interview"))
	raw, err := s.model.Generate(callCtx, prompt)
	timer.ObserveDuration()
	if err != nil {
		metrics.ModelRequests.WithLabelValues("interview", "error").Inc()
		return nil, err
	}
	metrics.ModelRequests.WithLabelValues("interview", "success").Inc()

	return parseQuestions(raw, level), nil
}

type rawQuestion struct {
	Question        string `json:"question"`
	Category        string `json:"category"`
	DifficultyLevel string `json:"difficulty_level"`
	TechStack       string `json:"tech_stack"`
	ExpectedAnswer  string `json:"expected_answer"`
}

// parseQuestions decodes the model's JSON array, repairing near-miss
// categories and defaulting blank difficulty to the derived level. Blank
// question text is malformed and dropped; an unparseable body yields an
// empty slice, which the caller treats as a shortfall.
func parseQuestions(raw, level string) []parsedQuestion {
	var items []rawQuestion
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &items); err != nil {
		logger.Log.Warn("Failed to decode model question output", zap.Error(err))
		return nil
	}

	out := make([]parsedQuestion, 0, len(items))
	for _, item := range items {
		text := strings.TrimSpace(item.Question)
		if text == "" {
			continue
		}

		difficulty := strings.TrimSpace(item.DifficultyLevel)
		if !validDifficulty(difficulty) {
			difficulty = level
		}

		out = append(out, parsedQuestion{
			Question:        text,
			Category:        normalizeCategory(item.Category),
			DifficultyLevel: difficulty,
			TechStack:       strings.TrimSpace(item.TechStack),
			ExpectedAnswer:  strings.TrimSpace(item.ExpectedAnswer),
		})
	}
	return out
}

// stripCodeFence removes a ```json ... ``` wrapper that some models add
// despite the JSON-only instruction.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// normalizeCategory repairs case and spacing differences; anything still
// outside the closed set deterministically falls back to Technical.
func normalizeCategory(category string) string {
	normalized := strings.Join(strings.Fields(strings.TrimSpace(category)), " ")
	for _, known := range models.QuestionCategories {
		if strings.EqualFold(normalized, known) {
			return known
		}
	}
	return models.CategoryTechnical
}

func validDifficulty(level string) bool {
	for _, known := range models.DifficultyLevels {
		if level == known {
			return true
		}
	}
	return false
}

// mergeQuestions appends b to a, skipping duplicate question text.
func mergeQuestions(a, b []parsedQuestion) []parsedQuestion {
	seen := make(map[string]struct{}, len(a))
	for _, q := range a {
		seen[q.Question] = struct{}{}
	}
	for _, q := range b {
		if _, ok := seen[q.Question]; ok {
			continue
		}
		seen[q.Question] = struct{}{}
		a = append(a, q)
	}
	return a
}

// persistQuestions stores new questions and reuses rows whose text
// already exists, mirroring how the question pool is shared across users.
func (s *InterviewService) persistQuestions(userID uuid.UUID, parsed []parsedQuestion) ([]models.InterviewQuestion, error) {
	questions := make([]models.InterviewQuestion, 0, len(parsed))

	for _, p := range parsed {
		existing, err := s.questionRepo.GetByQuestionText(p.Question)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			questions = append(questions, *existing)
			continue
		}

		uid := userID
		q := models.InterviewQuestion{
			ID:              uuid.New(),
			UserID:          &uid,
			Question:        p.Question,
			Category:        p.Category,
			DifficultyLevel: p.DifficultyLevel,
			TechStack:       p.TechStack,
			ExpectedAnswer:  p.ExpectedAnswer,
		}
		if err := s.questionRepo.CreateQuestion(&q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	return questions, nil
}

func validateGenerateRequest(req GenerateRequest) error {
	if req.YearsOfExperience < 0 || req.YearsOfExperience > 50 {
		return ErrInvalidInterviewRequest
	}
	if strings.TrimSpace(req.TargetRole) == "" {
		return ErrInvalidInterviewRequest
	}
	if req.NumQuestions < 1 || req.NumQuestions > maxQuestionCount {
		return ErrInvalidInterviewRequest
	}
	return nil
}
