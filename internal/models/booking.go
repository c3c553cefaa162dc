package models

import (
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Terminal reports whether the status can never change again.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// CanTransitionTo is the single source of truth for booking lifecycle
// legality: pending -> confirmed -> completed, with cancellation allowed
// from pending and confirmed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCompleted || next == BookingStatusCancelled
	default:
		return false
	}
}

type Booking struct {
	gorm.Model
	TripID             uint          `json:"tripId" gorm:"column:trip_id;not null;index"`
	Trip               Trip          `json:"trip"`
	RiderUserID        uint          `json:"riderUserId" gorm:"column:rider_user_id;not null;index"`
	Rider              User          `json:"rider" gorm:"foreignKey:RiderUserID"`
	SeatsBooked        int           `json:"seatsBooked" gorm:"column:seats_booked;not null"`
	TotalPrice         float64       `json:"totalPrice" gorm:"column:total_price;not null"`
	BookingCode        string        `json:"bookingCode" gorm:"column:booking_code;not null"`
	Status             BookingStatus `json:"status" gorm:"column:status;not null;default:'pending'"`
	CancellationReason string        `json:"cancellationReason,omitempty" gorm:"column:cancellation_reason"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
