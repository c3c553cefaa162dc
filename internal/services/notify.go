package services

import (
	"context"
	"log"

	"github.com/goswift/goswift-backend/internal/models"
	"gorm.io/gorm"
)

// Notifier is the fire-and-forget notification sink consumed by the
// booking and vehicle flows. A delivery failure never rolls back the
// operation that triggered it.
type Notifier interface {
	Notify(userID uint, ntype, title, message, link string)
}

// NotificationSink writes notification rows and pushes them to connected
// users over the websocket hub.
type NotificationSink struct {
	db  *gorm.DB
	hub *Hub
}

func NewNotificationSink(db *gorm.DB, hub *Hub) *NotificationSink {
	return &NotificationSink{db: db, hub: hub}
}

func (s *NotificationSink) Notify(userID uint, ntype, title, message, link string) {
	n := models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		Link:    link,
	}

	if err := s.db.Create(&n).Error; err != nil {
		log.Printf("Failed to create notification for user %d: %v", userID, err)
		return
	}

	InvalidateUnreadCount(context.Background(), userID)

	if s.hub != nil {
		s.hub.PushNotification(&n)
	}
}

// LogActivity appends an audit row. Failures are logged, never returned:
// the audit trail must not break the operation it records.
func LogActivity(db *gorm.DB, userID uint, action, details, ip string) {
	entry := models.ActivityLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log activity %q for user %d: %v", action, userID, err)
	}
}
