package service

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stackmentor/backend/internal/models"
	"github.com/stackmentor/backend/internal/repository"
	"github.com/stackmentor/backend/internal/utils"
	"github.com/stackmentor/backend/pkg/logger"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserNotFound          = errors.New("user not found")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	environment   string
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, environment string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		environment:   environment,
	}
}

// IsProduction returns true if running in production environment
func (s *AuthService) IsProduction() bool {
	return s.environment == "production"
}

// RegisterInput carries the registration payload after binding.
type RegisterInput struct {
	Username          string
	Email             string
	Password          string
	FullName          string
	YearsOfExperience int
	CurrentRole       string
}

func (s *AuthService) Register(in RegisterInput) (*models.User, string, error) {
	logger.Log.Debug("Processing user registration",
		zap.String("username", in.Username),
		zap.String("email", in.Email),
	)

	if err := s.validateRegisterInput(in); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", in.Username),
			zap.Error(err),
		)
		return nil, "", err
	}

	existingUser, err := s.userRepo.GetUserByEmail(in.Email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existingUser != nil {
		return nil, "", ErrEmailAlreadyExists
	}

	existingUser, err = s.userRepo.GetUserByUsername(in.Username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", in.Username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if existingUser != nil {
		return nil, "", ErrUsernameAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, "", err
	}

	user := &models.User{
		ID:                uuid.New(),
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      hashedPassword,
		FullName:          in.FullName,
		YearsOfExperience: in.YearsOfExperience,
		CurrentRole:       in.CurrentRole,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", in.Username),
			zap.Error(err),
		)
		return nil, "", err
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", in.Username),
	)

	return user, token, nil
}

func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		logger.Log.Error("Failed to get user by username",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("username", username),
		)
		return nil, "", ErrInvalidCredentials
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("username", username),
			zap.String("user_id", user.ID.String()),
		)
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, token, nil
}

func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ProfileUpdate holds optional profile changes; nil fields are untouched.
type ProfileUpdate struct {
	FullName          *string
	YearsOfExperience *int
	CurrentRole       *string
}

func (s *AuthService) UpdateProfile(userID uuid.UUID, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.YearsOfExperience != nil {
		if *update.YearsOfExperience < 0 {
			return nil, errors.New("years of experience must be non-negative")
		}
		user.YearsOfExperience = *update.YearsOfExperience
	}
	if update.CurrentRole != nil {
		user.CurrentRole = *update.CurrentRole
	}

	if err := s.userRepo.UpdateUser(user); err != nil {
		logger.Log.Error("Failed to update user profile",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return user, nil
}

func (s *AuthService) validateRegisterInput(in RegisterInput) error {
	if len(in.Username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	if len(in.Username) > 50 {
		return errors.New("username must be at most 50 characters")
	}

	if !emailRegex.MatchString(in.Email) {
		return errors.New("invalid email format")
	}
	if len(in.Email) > 100 {
		return errors.New("email too long")
	}

	if len(in.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(in.Password) > 128 {
		return errors.New("password too long")
	}

	if in.YearsOfExperience < 0 {
		return errors.New("years of experience must be non-negative")
	}

	return nil
}
