package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stackmentor/backend/internal/llm"
	"github.com/stackmentor/backend/internal/models"
	"github.com/stackmentor/backend/internal/repository"
	"github.com/stackmentor/backend/internal/service"
)

type InterviewHandler struct {
	interviewService *service.InterviewService
}

func NewInterviewHandler(interviewService *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
	}
}

type GenerateQuestionsRequest struct {
	YearsOfExperience int      `json:"years_of_experience"`
	TargetRole        string   `json:"target_role" binding:"required"`
	FocusAreas        []string `json:"focus_areas"`
	NumQuestions      int      `json:"num_questions"`
	TechStack         []string `json:"tech_stack"`
}

// POST /api/interview/generate
func (h *InterviewHandler) Generate(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	var req GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	set, err := h.interviewService.Generate(c.Request.Context(), claims.UserID, service.GenerateRequest{
		YearsOfExperience: req.YearsOfExperience,
		TargetRole:        req.TargetRole,
		FocusAreas:        req.FocusAreas,
		NumQuestions:      req.NumQuestions,
		TechStack:         req.TechStack,
	})
	if err != nil {
		h.writeGenerateError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

// POST /api/interview/practice-set
func (h *InterviewHandler) PracticeSet(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	set, err := h.interviewService.PracticeSet(c.Request.Context(), claims.UserID)
	if err != nil {
		h.writeGenerateError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

// GET /api/interview/saved
func (h *InterviewHandler) ListSaved(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	questions, err := h.interviewService.ListSaved(repository.QuestionFilter{
		Category:        c.Query("category"),
		DifficultyLevel: c.Query("difficulty_level"),
		TechStack:       c.Query("tech_stack"),
		Limit:           limit,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInterviewRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// GET /api/interview/my-questions
func (h *InterviewHandler) ListMine(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	questions, err := h.interviewService.ListMine(claims.UserID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// GET /api/interview/categories
func (h *InterviewHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.QuestionCategories})
}

// GET /api/interview/difficulty-levels
func (h *InterviewHandler) ListDifficultyLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"difficulty_levels": models.DifficultyLevels})
}

// GET /api/interview/stats
func (h *InterviewHandler) Stats(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	stats, techNames, err := h.interviewService.Stats(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_questions":             stats.Total,
		"categories":                  stats.ByCategory,
		"difficulty_levels":           stats.ByDifficulty,
		"relevant_to_user_tech_stack": stats.RelevantCount,
		"user_tech_stack":             techNames,
	})
}

func (h *InterviewHandler) writeGenerateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInterviewRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid generation parameters"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrGenerationParse):
		c.JSON(http.StatusBadGateway, gin.H{"error": "model returned an unusable question set"})
	case errors.Is(err, llm.ErrInvalidRequest):
		c.JSON(http.StatusBadGateway, gin.H{"error": "model rejected the request"})
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, llm.ErrRateLimited), errors.Is(err, llm.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model temporarily unavailable, try again shortly"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
