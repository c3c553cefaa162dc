package handlers

import (
	"strconv"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit < 1 || limit > 100 {
			limit = 50
		}
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}

		var notifications []models.Notification
		if err := db.Where("user_id = ?", userId).
			Order("created_at DESC").
			Limit(limit).
			Offset((page - 1) * limit).
			Find(&notifications).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch notifications"})
			return
		}

		c.JSON(200, gin.H{"notifications": notifications})
	}
}

// UnreadCount returns the caller's unread notification count, served from
// the Redis cache when warm.
func UnreadCount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		ctx := c.Request.Context()

		if count, ok := services.GetUnreadCount(ctx, userId); ok {
			c.JSON(200, gin.H{"count": count})
			return
		}

		var count int64
		if err := db.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userId, false).
			Count(&count).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to count notifications"})
			return
		}

		services.SetUnreadCount(ctx, userId, count)
		c.JSON(200, gin.H{"count": count})
	}
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		notificationId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid notification ID"})
			return
		}

		res := db.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", uint(notificationId), userId).
			Update("is_read", true)
		if res.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to update notification"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(404, gin.H{"error": "Notification not found"})
			return
		}

		services.InvalidateUnreadCount(c.Request.Context(), userId)
		c.JSON(200, gin.H{"message": "Notification marked as read"})
	}
}

// MarkAllNotificationsRead marks every unread notification of the caller
// as read.
func MarkAllNotificationsRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		if err := db.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userId, false).
			Update("is_read", true).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update notifications"})
			return
		}

		services.InvalidateUnreadCount(c.Request.Context(), userId)
		c.JSON(200, gin.H{"message": "All notifications marked as read"})
	}
}
