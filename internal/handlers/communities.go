package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
)

type CommunityHandler struct {
	db *gorm.DB
}

func NewCommunityHandler(db *gorm.DB) *CommunityHandler {
	return &CommunityHandler{db: db}
}

func (h *CommunityHandler) communityResponse(community *models.Community) gin.H {
	var memberCount, questionCount int64
	h.db.Model(&models.CommunityMember{}).Where("community_id = ?", community.ID).Count(&memberCount)
	h.db.Model(&models.Question{}).Where("community_id = ? AND is_deleted = ?", community.ID, false).Count(&questionCount)

	return gin.H{
		"id":            community.ID,
		"name":          community.Name,
		"description":   community.Description,
		"image_url":     community.ImageURL,
		"banner_url":    community.BannerURL,
		"is_private":    community.IsPrivate,
		"owner":         community.Owner,
		"memberCount":   memberCount,
		"questionCount": questionCount,
		"created_at":    community.CreatedAt,
		"updated_at":    community.UpdatedAt,
	}
}

// GetCommunities returns communities with optional search
func (h *CommunityHandler) GetCommunities(c *gin.Context) {
	page, limit := pageParams(c, 10)
	order := c.DefaultQuery("order", "desc")
	if order != "asc" {
		order = "desc"
	}

	query := h.db.Model(&models.Community{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var totalCount int64
	query.Count(&totalCount)

	var communities []models.Community
	err := query.Preload("Owner").
		Order("created_at " + order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&communities).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch communities"})
		return
	}

	responses := make([]gin.H, 0, len(communities))
	for i := range communities {
		responses = append(responses, h.communityResponse(&communities[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"communities": responses,
		"pagination":  paginationResponse(page, limit, totalCount),
	})
}

// CreateCommunity creates a community owned by the caller
// (PROTECTED - requires authentication)
func (h *CommunityHandler) CreateCommunity(c *gin.Context) {
	ownerID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPrivate   bool   `json:"is_private"`
		ImageURL    string `json:"image_url"`
		BannerURL   string `json:"banner_url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Community name is required"})
		return
	}

	var existing models.Community
	if err := h.db.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Community name already exists"})
		return
	}

	community := models.Community{
		Name:        input.Name,
		Description: input.Description,
		IsPrivate:   input.IsPrivate,
		ImageURL:    input.ImageURL,
		BannerURL:   input.BannerURL,
		OwnerID:     ownerID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&community).Error; err != nil {
			return err
		}
		member := models.CommunityMember{
			UserID:      ownerID,
			CommunityID: community.ID,
			Role:        models.CommunityRoleOwner,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create community"})
		return
	}

	h.db.Preload("Owner").First(&community, community.ID)
	c.JSON(http.StatusCreated, h.communityResponse(&community))
}

// JoinCommunity adds the caller as a member
// (PROTECTED - requires authentication)
func (h *CommunityHandler) JoinCommunity(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	communityID := c.Param("id")
	var community models.Community
	if err := h.db.First(&community, communityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Community not found"})
		return
	}

	var existing models.CommunityMember
	err := h.db.Where("user_id = ? AND community_id = ?", userID, community.ID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already a member of this community"})
		return
	}

	member := models.CommunityMember{
		UserID:      userID,
		CommunityID: community.ID,
		Role:        models.CommunityRoleMember,
	}
	if err := h.db.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join community"})
		return
	}

	h.db.Preload("User").First(&member, member.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Successfully joined community",
		"membership": gin.H{
			"user":      member.User,
			"role":      member.Role,
			"joined_at": member.JoinedAt,
		},
	})
}

// LeaveCommunity removes the caller's membership; the owner cannot leave
// (PROTECTED - requires authentication)
func (h *CommunityHandler) LeaveCommunity(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	communityID := c.Param("id")
	var community models.Community
	if err := h.db.First(&community, communityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Community not found"})
		return
	}

	if community.OwnerID == userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Community owner cannot leave. Transfer ownership or delete the community."})
		return
	}

	var member models.CommunityMember
	err := h.db.Where("user_id = ? AND community_id = ?", userID, community.ID).First(&member).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not a member of this community"})
		return
	}

	if err := h.db.Delete(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave community"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully left community"})
}

// GetCommunityQuestions returns the questions posted in a community
func (h *CommunityHandler) GetCommunityQuestions(c *gin.Context) {
	communityID := c.Param("id")
	var community models.Community
	if err := h.db.First(&community, communityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Community not found"})
		return
	}

	page, limit := pageParams(c, 10)

	var totalCount int64
	h.db.Model(&models.Question{}).Where("community_id = ? AND is_deleted = ?", community.ID, false).Count(&totalCount)

	var questions []models.Question
	err := h.db.Where("community_id = ? AND is_deleted = ?", community.ID, false).
		Preload("Author").Preload("Tags").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch community questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"community": gin.H{
			"id":   community.ID,
			"name": community.Name,
		},
		"questions":  questions,
		"pagination": paginationResponse(page, limit, totalCount),
	})
}
