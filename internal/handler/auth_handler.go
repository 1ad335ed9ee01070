package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stackmentor/backend/internal/service"
	"github.com/stackmentor/backend/internal/utils"
	"github.com/stackmentor/backend/pkg/logger"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type RegisterRequest struct {
	Username          string `json:"username" binding:"required"`
	Email             string `json:"email" binding:"required"`
	Password          string `json:"password" binding:"required"`
	FullName          string `json:"full_name"`
	YearsOfExperience int    `json:"years_of_experience"`
	CurrentRole       string `json:"current_role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Registration request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	logger.Log.Info("User registration attempt",
		zap.String("username", req.Username),
		zap.String("ip", c.ClientIP()),
	)

	user, token, err := h.authService.Register(service.RegisterInput{
		Username:          req.Username,
		Email:             req.Email,
		Password:          req.Password,
		FullName:          req.FullName,
		YearsOfExperience: req.YearsOfExperience,
		CurrentRole:       req.CurrentRole,
	})
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, service.ErrEmailAlreadyExists) || errors.Is(err, service.ErrUsernameAlreadyExists) {
			statusCode = http.StatusConflict
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "User registered successfully",
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Login request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		statusCode := http.StatusUnauthorized
		if !errors.Is(err, service.ErrInvalidCredentials) {
			statusCode = http.StatusInternalServerError
		}
		c.JSON(statusCode, gin.H{"error": "Incorrect username or password"})
		return
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	user, err := h.authService.GetUser(claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type UpdateProfileRequest struct {
	FullName          *string `json:"full_name"`
	YearsOfExperience *int    `json:"years_of_experience"`
	CurrentRole       *string `json:"current_role"`
}

// UpdateMe applies partial profile changes.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	claims := mustClaims(c)
	if claims == nil {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.authService.UpdateProfile(claims.UserID, service.ProfileUpdate{
		FullName:          req.FullName,
		YearsOfExperience: req.YearsOfExperience,
		CurrentRole:       req.CurrentRole,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// mustClaims pulls the auth middleware's claims from the context and
// rejects the request if they are missing.
func mustClaims(c *gin.Context) *utils.Claims {
	value, exists := c.Get("claims")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}
	claims, ok := value.(*utils.Claims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}
	return claims
}
