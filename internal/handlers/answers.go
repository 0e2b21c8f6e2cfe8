package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
	"github.com/askstack/backend/internal/services"
)

type AnswerHandler struct {
	db         *gorm.DB
	answers    *services.AnswerService
	ledger     *services.VoteLedger
	acceptance *services.AcceptanceService
}

func NewAnswerHandler(db *gorm.DB, answers *services.AnswerService, ledger *services.VoteLedger, acceptance *services.AcceptanceService) *AnswerHandler {
	return &AnswerHandler{db: db, answers: answers, ledger: ledger, acceptance: acceptance}
}

func (h *AnswerHandler) calculateVotes(answerID int) (int, int) {
	var upvotes, downvotes int64
	h.db.Model(&models.Vote{}).Where("answer_id = ? AND type = ?", answerID, models.Upvote).Count(&upvotes)
	h.db.Model(&models.Vote{}).Where("answer_id = ? AND type = ?", answerID, models.Downvote).Count(&downvotes)
	return int(upvotes), int(downvotes)
}

func (h *AnswerHandler) answerResponse(answer *models.Answer) gin.H {
	up, down := h.calculateVotes(answer.ID)

	var commentCount int64
	h.db.Model(&models.Comment{}).Where("answer_id = ? AND is_deleted = ?", answer.ID, false).Count(&commentCount)

	var votes []models.Vote
	h.db.Where("answer_id = ?", answer.ID).Find(&votes)
	userVotes := make([]gin.H, 0, len(votes))
	for _, v := range votes {
		userVotes = append(userVotes, gin.H{"user_id": v.UserID, "type": v.Type})
	}

	return gin.H{
		"id":          answer.ID,
		"content":     answer.Content,
		"author":      answer.Author,
		"question_id": answer.QuestionID,
		"is_accepted": answer.IsAccepted,
		"votes": gin.H{
			"upvotes":   up,
			"downvotes": down,
			"netVotes":  up - down,
			"userVotes": userVotes,
		},
		"commentCount": commentCount,
		"created_at":   answer.CreatedAt,
		"updated_at":   answer.UpdatedAt,
	}
}

func paginationResponse(page, limit int, totalCount int64) gin.H {
	totalPages := int(math.Ceil(float64(totalCount) / float64(limit)))
	return gin.H{
		"currentPage": page,
		"totalPages":  totalPages,
		"totalCount":  totalCount,
		"hasNext":     int64(page*limit) < totalCount,
		"hasPrev":     page > 1,
	}
}

func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// GetAnswers returns all answers for a question, accepted answers first
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID := c.Query("questionId")
	if questionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameter: questionId"})
		return
	}

	var question models.Question
	if err := h.db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	page, limit := pageParams(c, 10)
	order := c.DefaultQuery("order", "desc")
	if order != "asc" {
		order = "desc"
	}
	sortBy := c.DefaultQuery("sortBy", "newest") // newest, votes

	query := h.db.Where("answers.question_id = ? AND answers.is_deleted = ?", question.ID, false).
		Preload("Author").
		Order("answers.is_accepted desc")

	if sortBy == "votes" {
		query = query.
			Joins("LEFT JOIN votes ON votes.answer_id = answers.id").
			Group("answers.id").
			Order("COALESCE(SUM(CASE votes.type WHEN 'UPVOTE' THEN 1 WHEN 'DOWNVOTE' THEN -1 END), 0) " + order)
	} else {
		query = query.Order("answers.created_at " + order)
	}

	var answers []models.Answer
	query = query.Offset((page - 1) * limit).Limit(limit)

	if err := query.Find(&answers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch answers"})
		return
	}

	var totalCount int64
	h.db.Model(&models.Answer{}).Where("question_id = ? AND is_deleted = ?", question.ID, false).Count(&totalCount)

	responses := make([]gin.H, 0, len(answers))
	for i := range answers {
		responses = append(responses, h.answerResponse(&answers[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"answers": responses,
		"question": gin.H{
			"id":        question.ID,
			"title":     question.Title,
			"author_id": question.AuthorID,
		},
		"pagination": paginationResponse(page, limit, totalCount),
	})
}

// GetAnswer returns a single answer by ID
func (h *AnswerHandler) GetAnswer(c *gin.Context) {
	answerID := c.Param("id")

	var answer models.Answer
	err := h.db.Where("id = ? AND is_deleted = ?", answerID, false).
		Preload("Author").Preload("Question").Preload("Question.Author").
		First(&answer).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		return
	}

	var comments []models.Comment
	h.db.Where("answer_id = ? AND is_deleted = ?", answer.ID, false).
		Preload("Author").Order("created_at asc").Find(&comments)

	response := h.answerResponse(&answer)
	response["question"] = answer.Question
	response["comments"] = comments

	c.JSON(http.StatusOK, gin.H{"answer": response})
}

// CreateAnswer creates a new answer and notifies the question author
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: content, authorId, questionId"})
		return
	}

	if input.Content == "" || input.AuthorID == 0 || input.QuestionID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: content, authorId, questionId"})
		return
	}

	answer, err := h.answers.Create(input.Content, input.AuthorID, input.QuestionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"answer":  h.answerResponse(answer),
		"message": "Answer created successfully",
	})
}

// UpdateAnswer replaces the answer content (PUT, author only)
func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer id"})
		return
	}

	var input struct {
		Content  string `json:"content"`
		AuthorID int    `json:"authorId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: content"})
		return
	}

	answer, err := h.answers.UpdateContent(answerID, input.AuthorID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":  h.answerResponse(answer),
		"message": "Answer updated successfully",
	})
}

// PatchAnswer partially updates an answer: content by the answer author,
// isAccepted by the question author
func (h *AnswerHandler) PatchAnswer(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer id"})
		return
	}

	var input struct {
		AuthorID         int     `json:"authorId"`
		QuestionAuthorID int     `json:"questionAuthorId"`
		Content          *string `json:"content"`
		IsAccepted       *bool   `json:"isAccepted"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Content == nil && input.IsAccepted == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if input.Content != nil {
		if _, err := h.answers.UpdateContent(answerID, input.AuthorID, *input.Content); err != nil {
			respondError(c, err)
			return
		}
	}

	if input.IsAccepted != nil {
		var accErr error
		if *input.IsAccepted {
			_, accErr = h.acceptance.Accept(answerID, input.QuestionAuthorID)
		} else {
			_, accErr = h.acceptance.Unaccept(answerID, input.QuestionAuthorID)
		}
		if accErr != nil {
			respondError(c, accErr)
			return
		}
	}

	var answer models.Answer
	if err := h.db.Preload("Author").First(&answer, answerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Answer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":  h.answerResponse(&answer),
		"message": "Answer updated successfully",
	})
}

// MarkCorrect accepts or unaccepts an answer on behalf of the question author
func (h *AnswerHandler) MarkCorrect(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer id"})
		return
	}

	var input struct {
		QuestionAuthorID int   `json:"questionAuthorId"`
		IsAccepted       *bool `json:"isAccepted"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.QuestionAuthorID == 0 || input.IsAccepted == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: questionAuthorId, isAccepted (boolean)"})
		return
	}

	var result *services.AcceptanceResult
	if *input.IsAccepted {
		result, err = h.acceptance.Accept(answerID, input.QuestionAuthorID)
	} else {
		result, err = h.acceptance.Unaccept(answerID, input.QuestionAuthorID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.Changed {
		state := "not accepted"
		if result.IsAccepted {
			state = "accepted"
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Answer is already " + state,
			"answer": gin.H{
				"id":               result.AnswerID,
				"is_accepted":      result.IsAccepted,
				"authorReputation": result.AuthorReputation,
			},
		})
		return
	}

	message := "Answer marked as correct successfully"
	if !result.IsAccepted {
		message = "Answer unmarked as correct successfully"
	}

	var notification interface{}
	if result.Notification != "" {
		notification = result.Notification
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"answer": gin.H{
			"id":               result.AnswerID,
			"is_accepted":      result.IsAccepted,
			"authorId":         result.AuthorID,
			"authorName":       result.AuthorName,
			"authorReputation": result.AuthorReputation,
			"questionId":       result.QuestionID,
			"questionTitle":    result.QuestionTitle,
		},
		"reputationChange":          result.ReputationChange,
		"questionHasAcceptedAnswer": result.QuestionHasAcceptedAnswer,
		"notification":              notification,
	})
}

// VoteAnswer casts, flips or removes a vote on an answer
func (h *AnswerHandler) VoteAnswer(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer id"})
		return
	}

	var input struct {
		UserID   int    `json:"userId"`
		VoteType string `json:"voteType"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.UserID == 0 || input.VoteType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: userId, voteType"})
		return
	}

	voteType := models.VoteType(input.VoteType)
	if !voteType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote type. Must be UPVOTE or DOWNVOTE"})
		return
	}

	result, err := h.ledger.CastVote(input.UserID, answerID, voteType)
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
		"questionId":       result.QuestionID,
	})
}

// DeleteAnswer soft deletes an answer (author only)
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer id"})
		return
	}

	authorID, err := strconv.Atoi(c.Query("authorId"))
	if err != nil || authorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameter: authorId"})
		return
	}

	if err := h.answers.SoftDelete(answerID, authorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}

// IncreaseView bumps the parent question's view count for a viewed answer
func (h *AnswerHandler) IncreaseView(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer id"})
		return
	}

	question, err := h.answers.IncreaseView(answerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"answerId":      answerID,
		"questionId":    question.ID,
		"questionTitle": question.Title,
		"views":         question.Views,
		"message":       "Question view count increased successfully",
	})
}
