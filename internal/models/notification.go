package models

import (
	"gorm.io/gorm"
)

// Notification types emitted by the booking and vehicle flows.
const (
	NotificationBookingRequest   = "booking_request"
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationBookingCancelled = "booking_cancelled"
	NotificationTripCancelled    = "trip_cancelled"
	NotificationTripCompleted    = "trip_completed"
	NotificationVehicleVerified  = "vehicle_verified"
	NotificationVehicleRejected  = "vehicle_rejected"
)

type Notification struct {
	gorm.Model
	UserID  uint   `json:"userId" gorm:"column:user_id;not null;index"`
	Type    string `json:"type" gorm:"column:type;not null"`
	Title   string `json:"title" gorm:"column:title;not null"`
	Message string `json:"message" gorm:"column:message;not null"`
	Link    string `json:"link" gorm:"column:link"`
	IsRead  bool   `json:"isRead" gorm:"column:is_read;default:false"`
}

func (Notification) TableName() string {
	return "notifications"
}
