package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/askstack/backend/internal/models"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// GetNotifications returns the caller's notifications, newest first
// (PROTECTED - requires authentication)
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, limit := pageParams(c, 20)

	var totalCount, unreadCount int64
	h.db.Model(&models.Notification{}).Where("recipient_id = ?", userID).Count(&totalCount)
	h.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", userID, false).Count(&unreadCount)

	var notifications []models.Notification
	err := h.db.Where("recipient_id = ?", userID).
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unreadCount":   unreadCount,
		"pagination":    paginationResponse(page, limit, totalCount),
	})
}

// MarkRead flags one of the caller's notifications as read
// (PROTECTED - requires authentication)
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID := c.Param("id")
	var notification models.Notification
	if err := h.db.First(&notification, notificationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	if notification.RecipientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only read your own notifications"})
		return
	}

	if err := h.db.Model(&notification).Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
