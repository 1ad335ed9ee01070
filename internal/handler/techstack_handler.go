package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stackmentor/backend/internal/service"
)

type TechStackHandler struct {
	techStackService *service.TechStackService
}

func NewTechStackHandler(techStackService *service.TechStackService) *TechStackHandler {
	return &TechStackHandler{
		techStackService: techStackService,
	}
}

// GET /api/techstack/available
func (h *TechStackHandler) ListAvailable(c *gin.Context) {
	techs, err := h.techStackService.ListCatalog(c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch technologies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"technologies": techs})
}

// GET /api/techstack/categories
func (h *TechStackHandler) ListCategories(c *gin.Context) {
	categories, err := h.techStackService.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GET /api/techstack/my-stack
func (h *TechStackHandler) GetMyStack(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	techs, err := h.techStackService.GetSelection(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tech stack"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tech_stacks": techs})
}

type UpdateStackRequest struct {
	TechnologyIDs []uint `json:"technology_ids"`
}

// PUT /api/techstack/my-stack
// Replaces the whole selection; an empty list clears it.
func (h *TechStackHandler) UpdateMyStack(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	var req UpdateStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	techs, err := h.techStackService.ReplaceSelection(claims.UserID, req.TechnologyIDs)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTechnology) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Some technology ids are invalid"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update tech stack"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Tech stack updated successfully",
		"tech_stacks": techs,
	})
}
