package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
	"github.com/askstack/backend/internal/services"
)

type QuestionHandler struct {
	db     *gorm.DB
	ledger *services.VoteLedger
}

func NewQuestionHandler(db *gorm.DB, ledger *services.VoteLedger) *QuestionHandler {
	return &QuestionHandler{db: db, ledger: ledger}
}

func (h *QuestionHandler) questionResponse(question *models.Question) gin.H {
	var acceptedCount int64
	h.db.Model(&models.Answer{}).
		Where("question_id = ? AND is_accepted = ? AND is_deleted = ?", question.ID, true, false).
		Count(&acceptedCount)

	return gin.H{
		"id":                question.ID,
		"title":             question.Title,
		"description":       question.Description,
		"attempt":           question.Attempt,
		"author":            question.Author,
		"tags":              question.Tags,
		"answers":           question.AnswersCount,
		"views":             question.Views,
		"hasAcceptedAnswer": acceptedCount > 0,
		"community_id":      question.CommunityID,
		"created_at":        question.CreatedAt,
		"updated_at":        question.UpdatedAt,
	}
}

// GetQuestions returns questions with optional tag filter and search
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	page, limit := pageParams(c, 10)
	order := c.DefaultQuery("order", "desc")
	if order != "asc" {
		order = "desc"
	}

	query := h.db.Model(&models.Question{}).Where("questions.is_deleted = ?", false)

	if tag := c.Query("tag"); tag != "" {
		query = query.
			Joins("JOIN question_tags ON question_tags.question_id = questions.id").
			Joins("JOIN tags ON tags.id = question_tags.tag_id").
			Where("tags.name = ?", strings.ToLower(tag))
	}

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(questions.title) LIKE ? OR LOWER(questions.description) LIKE ?", pattern, pattern)
	}

	var totalCount int64
	query.Count(&totalCount)

	var questions []models.Question
	err := query.
		Preload("Author").Preload("Tags").
		Order("questions.created_at " + order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	responses := make([]gin.H, 0, len(questions))
	for i := range questions {
		responses = append(responses, h.questionResponse(&questions[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"questions":  responses,
		"pagination": paginationResponse(page, limit, totalCount),
	})
}

// CreateQuestion creates a question with upsert-by-name tags
// (PROTECTED - requires authentication)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Title == "" || input.Description == "" || input.Attempt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: title, description, attempt"})
		return
	}

	if len(input.Title) > 255 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be 255 characters or less"})
		return
	}

	question := models.Question{
		Title:       input.Title,
		Description: input.Description,
		Attempt:     input.Attempt,
		AuthorID:    authorID,
		CommunityID: input.CommunityID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}

		for _, tagName := range input.Tags {
			name := strings.ToLower(strings.TrimSpace(tagName))
			if name == "" {
				continue
			}
			var tag models.Tag
			if err := tx.Where(models.Tag{Name: name}).
				Attrs(models.Tag{Description: "Questions related to " + name}).
				FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			if err := tx.Model(&question).Association("Tags").Append(&tag); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
		return
	}

	h.db.Preload("Author").Preload("Tags").First(&question, question.ID)

	c.JSON(http.StatusCreated, gin.H{
		"question": h.questionResponse(&question),
		"message":  "Question created successfully",
	})
}

// GetQuestion returns a single question by ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.Param("id")

	var question models.Question
	err := h.db.Where("id = ? AND is_deleted = ?", questionID, false).
		Preload("Author").Preload("Tags").First(&question).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"question": h.questionResponse(&question)})
}

// VoteAnswer votes on an answer scoped to this question; the answer must
// belong to the question
func (h *QuestionHandler) VoteAnswer(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question id"})
		return
	}

	var input struct {
		AnswerID int    `json:"answerId"`
		UserID   int    `json:"userId"`
		VoteType string `json:"voteType"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.AnswerID == 0 || input.UserID == 0 || input.VoteType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: answerId, userId, voteType"})
		return
	}

	voteType := models.VoteType(input.VoteType)
	if !voteType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote type. Must be UPVOTE or DOWNVOTE"})
		return
	}

	var answer models.Answer
	err = h.db.Where("id = ? AND question_id = ? AND is_deleted = ?", input.AnswerID, questionID, false).
		First(&answer).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found or does not belong to this question"})
		return
	}

	result, err := h.ledger.CastVote(input.UserID, input.AnswerID, voteType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"vote": gin.H{
			"action":   result.Action,
			"voteType": result.VoteType,
			"message":  result.Message,
		},
		"voteCounts": gin.H{
			"upvotes":   result.Upvotes,
			"downvotes": result.Downvotes,
			"netVotes":  result.NetVotes,
		},
		"userVote":         result.UserVote,
		"reputationChange": result.ReputationChange,
		"authorReputation": result.AuthorReputation,
		"answerId":         result.AnswerID,
		"questionId":       questionID,
	})
}
