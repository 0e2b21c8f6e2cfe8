package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
	"github.com/askstack/backend/internal/services"
)

type CommentHandler struct {
	db       *gorm.DB
	comments *services.CommentService
}

func NewCommentHandler(db *gorm.DB, comments *services.CommentService) *CommentHandler {
	return &CommentHandler{db: db, comments: comments}
}

// GetComments returns all comments for an answer
func (h *CommentHandler) GetComments(c *gin.Context) {
	answerID := c.Param("id")

	var answer models.Answer
	err := h.db.Where("id = ? AND is_deleted = ?", answerID, false).
		Preload("Author").Preload("Question").First(&answer).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		return
	}

	page, limit := pageParams(c, 20)
	order := c.DefaultQuery("order", "asc")
	if order != "desc" {
		order = "asc"
	}

	var comments []models.Comment
	query := h.db.Where("answer_id = ? AND is_deleted = ?", answer.ID, false).
		Preload("Author").
		Order("created_at " + order).
		Offset((page - 1) * limit).
		Limit(limit)

	if err := query.Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	var totalCount int64
	h.db.Model(&models.Comment{}).Where("answer_id = ? AND is_deleted = ?", answer.ID, false).Count(&totalCount)

	responses := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, gin.H{
			"id":         comment.ID,
			"content":    comment.Content,
			"author":     comment.Author,
			"answer_id":  comment.AnswerID,
			"created_at": comment.CreatedAt,
			"updated_at": comment.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": responses,
		"answer": gin.H{
			"id":     answer.ID,
			"author": gin.H{"id": answer.Author.ID, "username": answer.Author.Username},
			"question": gin.H{
				"id":    answer.Question.ID,
				"title": answer.Question.Title,
			},
		},
		"pagination": paginationResponse(page, limit, totalCount),
	})
}

// CreateComment adds a comment to an answer and fans out notifications
func (h *CommentHandler) CreateComment(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer id"})
		return
	}

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Content == "" || input.AuthorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: content, authorId"})
		return
	}

	comment, err := h.comments.Create(answerID, input.AuthorID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment": gin.H{
			"id":         comment.ID,
			"content":    comment.Content,
			"author":     comment.Author,
			"answer_id":  comment.AnswerID,
			"created_at": comment.CreatedAt,
			"updated_at": comment.UpdatedAt,
		},
		"message": "Comment created successfully",
	})
}
