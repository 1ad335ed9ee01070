package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/stackmentor/backend/internal/config"
	"github.com/stackmentor/backend/internal/database"
	"github.com/stackmentor/backend/internal/handler"
	"github.com/stackmentor/backend/internal/jobs"
	"github.com/stackmentor/backend/internal/llm"
	"github.com/stackmentor/backend/internal/middleware"
	"github.com/stackmentor/backend/internal/prompts"
	"github.com/stackmentor/backend/internal/repository"
	"github.com/stackmentor/backend/internal/service"
	"github.com/stackmentor/backend/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Init(!cfg.IsProduction())
	defer logger.Sync()
	log.Println("Config loaded successfully")

	database.Connect(cfg)
	database.Migrate()

	// Redis backs the rate limiter only; the app works without it but
	// unthrottled.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Model client with bounded retries for transient failures.
	gemini, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to initialize model client: %v", err)
	}
	model := llm.NewRetryClient(gemini, cfg.ModelRetries, llm.DefaultBackoff)

	promptBuilder, err := prompts.NewBuilder()
	if err != nil {
		log.Fatalf("Failed to load prompt templates: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	techRepo := repository.NewTechnologyRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.DB)
	questionRepo := repository.NewQuestionRepository(database.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	techStackService := service.NewTechStackService(techRepo)
	chatService := service.NewChatService(
		sessionRepo, userRepo, techRepo,
		model, promptBuilder,
		cfg.HistoryWindow, cfg.ModelTimeout,
	)
	interviewService := service.NewInterviewService(
		questionRepo, userRepo, techRepo,
		model, promptBuilder,
		cfg.ModelTimeout,
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	techStackHandler := handler.NewTechStackHandler(techStackService)
	chatHandler := handler.NewChatHandler(chatService)
	interviewHandler := handler.NewInterviewHandler(interviewService)

	// Background purge of soft-deleted sessions past retention.
	pruner := jobs.NewSessionPruner(sessionRepo, cfg.SessionRetention, "")
	if err := pruner.Start(); err != nil {
		log.Fatalf("Failed to start session pruner: %v", err)
	}
	defer pruner.Stop()

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(rateLimiter.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)

	// Protected routes (require JWT)
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/me", authHandler.UpdateMe)

		protected.GET("/techstack/available", techStackHandler.ListAvailable)
		protected.GET("/techstack/categories", techStackHandler.ListCategories)
		protected.GET("/techstack/my-stack", techStackHandler.GetMyStack)
		protected.PUT("/techstack/my-stack", techStackHandler.UpdateMyStack)

		protected.POST("/chat/session", chatHandler.CreateSession)
		protected.GET("/chat/sessions", chatHandler.ListSessions)
		protected.GET("/chat/session/:id/messages", chatHandler.GetSessionMessages)
		protected.DELETE("/chat/session/:id", chatHandler.DeleteSession)
		protected.POST("/chat/message", chatHandler.SendMessage)

		protected.POST("/interview/generate", interviewHandler.Generate)
		protected.POST("/interview/practice-set", interviewHandler.PracticeSet)
		protected.GET("/interview/saved", interviewHandler.ListSaved)
		protected.GET("/interview/my-questions", interviewHandler.ListMine)
		protected.GET("/interview/categories", interviewHandler.ListCategories)
		protected.GET("/interview/difficulty-levels", interviewHandler.ListDifficultyLevels)
		protected.GET("/interview/stats", interviewHandler.Stats)
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
