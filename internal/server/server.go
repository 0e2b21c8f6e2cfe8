package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/askstack/backend/internal/database"
	"github.com/askstack/backend/internal/handlers"
	"github.com/askstack/backend/internal/middleware"
)

type Server struct {
	db      *database.Database
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Create unified handler
	handler := handlers.NewHandler(db)

	// Create server instance
	newServer := &Server{
		db:      db,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	api.Use(limiter.Middleware())
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Question routes (public reads)
		api.GET("/questions", s.handler.Question.GetQuestions)
		api.GET("/questions/:id", s.handler.Question.GetQuestion)
		api.POST("/questions/:id/vote", s.handler.Question.VoteAnswer)

		// Answer routes (explicit actor ids per the compatibility contract)
		api.GET("/answers", s.handler.Answer.GetAnswers)
		api.POST("/answers", s.handler.Answer.CreateAnswer)
		api.GET("/answers/:id", s.handler.Answer.GetAnswer)
		api.PUT("/answers/:id", s.handler.Answer.UpdateAnswer)
		api.PATCH("/answers/:id", s.handler.Answer.PatchAnswer)
		api.DELETE("/answers/:id", s.handler.Answer.DeleteAnswer)
		api.POST("/answers/:id/vote", s.handler.Answer.VoteAnswer)
		api.POST("/answers/:id/mark-correct", s.handler.Answer.MarkCorrect)
		api.POST("/answers/:id/increase-view", s.handler.Answer.IncreaseView)

		// Comment routes
		api.GET("/answers/:id/comments", s.handler.Comment.GetComments)
		api.POST("/answers/:id/comments", s.handler.Comment.CreateComment)

		// Community routes (public reads)
		api.GET("/communities", s.handler.Community.GetCommunities)
		api.GET("/communities/:id/questions", s.handler.Community.GetCommunityQuestions)

		// Tag routes (public reads)
		api.GET("/tags", s.handler.Tag.GetTags)

		// User routes (public reads)
		api.GET("/users", s.handler.User.GetUsers)
		api.GET("/users/:id", s.handler.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/auth/session", s.handler.Auth.GetSession)

			protected.POST("/questions", s.handler.Question.CreateQuestion)

			protected.POST("/communities", s.handler.Community.CreateCommunity)
			protected.POST("/communities/:id/join", s.handler.Community.JoinCommunity)
			protected.DELETE("/communities/:id/join", s.handler.Community.LeaveCommunity)

			protected.GET("/user/watched-tags", s.handler.User.GetWatchedTags)
			protected.POST("/user/watched-tags", s.handler.User.WatchTag)
			protected.DELETE("/user/watched-tags/:tagId", s.handler.User.UnwatchTag)

			protected.GET("/notifications", s.handler.Notification.GetNotifications)
			protected.POST("/notifications/:id/read", s.handler.Notification.MarkRead)
		}
	}

	return r
}
