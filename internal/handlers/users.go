package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetUsers returns users ordered by reputation
func (h *UserHandler) GetUsers(c *gin.Context) {
	page, limit := pageParams(c, 20)

	var totalCount int64
	h.db.Model(&models.User{}).Count(&totalCount)

	var users []models.User
	err := h.db.Order("reputation desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": paginationResponse(page, limit, totalCount),
	})
}

// GetUserProfile returns a user's profile with activity stats
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID := c.Param("id")
	var user models.User

	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var questionCount, answerCount, acceptedCount int64
	h.db.Model(&models.Question{}).Where("author_id = ? AND is_deleted = ?", user.ID, false).Count(&questionCount)
	h.db.Model(&models.Answer{}).Where("author_id = ? AND is_deleted = ?", user.ID, false).Count(&answerCount)
	h.db.Model(&models.Answer{}).Where("author_id = ? AND is_accepted = ? AND is_deleted = ?", user.ID, true, false).Count(&acceptedCount)

	var upvotesReceived int64
	h.db.Model(&models.Vote{}).
		Joins("JOIN answers ON answers.id = votes.answer_id").
		Where("answers.author_id = ? AND votes.type = ?", user.ID, models.Upvote).
		Count(&upvotesReceived)

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"stats": gin.H{
			"questions":       questionCount,
			"answers":         answerCount,
			"acceptedAnswers": acceptedCount,
			"upvotesReceived": upvotesReceived,
			"reputation":      user.Reputation,
		},
	})
}

// GetWatchedTags returns the caller's watched tags
// (PROTECTED - requires authentication)
func (h *UserHandler) GetWatchedTags(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var watched []models.WatchedTag
	if err := h.db.Where("user_id = ?", userID).Preload("Tag").Find(&watched).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch watched tags"})
		return
	}

	tags := make([]models.Tag, 0, len(watched))
	for _, w := range watched {
		tags = append(tags, w.Tag)
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// WatchTag adds a tag to the caller's watched list
// (PROTECTED - requires authentication)
func (h *UserHandler) WatchTag(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		TagID int `json:"tagId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.TagID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required field: tagId"})
		return
	}

	var tag models.Tag
	if err := h.db.First(&tag, input.TagID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
		return
	}

	var existing models.WatchedTag
	if err := h.db.Where("user_id = ? AND tag_id = ?", userID, tag.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Tag already watched"})
		return
	}

	watched := models.WatchedTag{UserID: userID, TagID: tag.ID}
	if err := h.db.Create(&watched).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to watch tag"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Tag watched successfully", "tag": tag})
}

// UnwatchTag removes a tag from the caller's watched list
// (PROTECTED - requires authentication)
func (h *UserHandler) UnwatchTag(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tagID, err := strconv.Atoi(c.Param("tagId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tag id"})
		return
	}

	result := h.db.Where("user_id = ? AND tag_id = ?", userID, tagID).Delete(&models.WatchedTag{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unwatch tag"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not watched"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag unwatched successfully"})
}
