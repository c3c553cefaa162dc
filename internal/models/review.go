package models

import (
	"gorm.io/gorm"
)

// Review is left by a rider for a trip owner, one per completed booking.
type Review struct {
	gorm.Model
	BookingID      uint   `json:"bookingId" gorm:"column:booking_id;unique;not null"`
	TripID         uint   `json:"tripId" gorm:"column:trip_id;not null;index"`
	ReviewerUserID uint   `json:"reviewerUserId" gorm:"column:reviewer_user_id;not null;index"`
	Reviewer       User   `json:"reviewer" gorm:"foreignKey:ReviewerUserID"`
	ReviewedUserID uint   `json:"reviewedUserId" gorm:"column:reviewed_user_id;not null;index"`
	Rating         int    `json:"rating" gorm:"column:rating;not null"`
	Comment        string `json:"comment" gorm:"column:comment"`
}

func (Review) TableName() string {
	return "reviews"
}
