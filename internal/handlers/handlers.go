package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/askstack/backend/internal/database"
	"github.com/askstack/backend/internal/services"
)

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	Question     *QuestionHandler
	Answer       *AnswerHandler
	Comment      *CommentHandler
	Community    *CommunityHandler
	Tag          *TagHandler
	User         *UserHandler
	Notification *NotificationHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *database.Database) *Handler {
	// Get the GORM DB instance from the service
	dbService := database.New()
	gormDB := dbService.GetDB()

	notifier := services.NewNotifier()
	ledger := services.NewVoteLedger(gormDB, notifier)
	acceptance := services.NewAcceptanceService(gormDB, notifier)
	answers := services.NewAnswerService(gormDB, notifier)
	comments := services.NewCommentService(gormDB, notifier)

	return &Handler{
		Auth:         NewAuthHandler(gormDB),
		Question:     NewQuestionHandler(gormDB, ledger),
		Answer:       NewAnswerHandler(gormDB, answers, ledger, acceptance),
		Comment:      NewCommentHandler(gormDB, comments),
		Community:    NewCommunityHandler(gormDB),
		Tag:          NewTagHandler(gormDB),
		User:         NewUserHandler(gormDB),
		Notification: NewNotificationHandler(gormDB),
	}
}

// respondError maps service errors to HTTP status codes. Transaction
// failures surface as 500 with a generic message; nothing internal leaks.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrSelfVote), errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
