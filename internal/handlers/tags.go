package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
)

type TagHandler struct {
	db *gorm.DB
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

// GetTags returns tags with question and follower counts
func (h *TagHandler) GetTags(c *gin.Context) {
	page, limit := pageParams(c, 20)
	sortBy := c.DefaultQuery("sortBy", "popular") // popular, name, newest

	query := h.db.Model(&models.Tag{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var totalCount int64
	query.Count(&totalCount)

	switch sortBy {
	case "name":
		query = query.Order("name asc")
	case "newest":
		query = query.Order("created_at desc")
	default:
		query = query.
			Joins("LEFT JOIN question_tags ON question_tags.tag_id = tags.id").
			Group("tags.id").
			Order("COUNT(question_tags.question_id) DESC, tags.name ASC")
	}

	var tags []models.Tag
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	responses := make([]gin.H, 0, len(tags))
	for _, tag := range tags {
		var questionCount, followerCount int64
		h.db.Table("question_tags").Where("tag_id = ?", tag.ID).Count(&questionCount)
		h.db.Model(&models.WatchedTag{}).Where("tag_id = ?", tag.ID).Count(&followerCount)

		responses = append(responses, gin.H{
			"id":            tag.ID,
			"name":          tag.Name,
			"description":   tag.Description,
			"questionCount": questionCount,
			"followerCount": followerCount,
			"created_at":    tag.CreatedAt,
			"updated_at":    tag.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":       responses,
		"pagination": paginationResponse(page, limit, totalCount),
	})
}
