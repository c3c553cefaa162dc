package handlers

import (
	"fmt"
	"strconv"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	TripID uint `json:"tripId" binding:"required"`
	Seats  int  `json:"seats" binding:"required,min=1"`
}

// CreateBooking places a pending seat hold on a trip.
func CreateBooking(db *gorm.DB, bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var input CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := bookings.Create(userId, input.TripID, input.Seats)
		if err != nil {
			fail(c, err)
			return
		}

		services.InvalidateSearchCache(c.Request.Context())
		services.LogActivity(db, userId, "booking_created",
			fmt.Sprintf("Booking ID: %d, Trip ID: %d, Seats: %d", booking.ID, input.TripID, input.Seats), c.ClientIP())

		c.JSON(201, gin.H{
			"message": "Booking request sent. You will be notified when the owner responds.",
			"booking": booking,
		})
	}
}

// ConfirmBooking accepts a pending booking. Owner of the trip only.
func ConfirmBooking(db *gorm.DB, bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		bookingId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		booking, err := bookings.Confirm(userId, uint(bookingId))
		if err != nil {
			fail(c, err)
			return
		}

		services.LogActivity(db, userId, "booking_confirmed",
			fmt.Sprintf("Booking ID: %d", booking.ID), c.ClientIP())

		c.JSON(200, gin.H{"message": "Booking confirmed", "booking": booking})
	}
}

type CancelBookingInput struct {
	Reason string `json:"reason"`
}

// CancelBooking cancels a pending or confirmed booking. Either the rider
// or the trip owner may cancel; held seats are released.
func CancelBooking(db *gorm.DB, bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		bookingId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		var input CancelBookingInput
		c.ShouldBindJSON(&input)

		booking, err := bookings.Cancel(userId, uint(bookingId), input.Reason)
		if err != nil {
			fail(c, err)
			return
		}

		services.InvalidateSearchCache(c.Request.Context())
		services.LogActivity(db, userId, "booking_cancelled",
			fmt.Sprintf("Booking ID: %d", booking.ID), c.ClientIP())

		c.JSON(200, gin.H{"message": "Booking cancelled", "booking": booking})
	}
}

// CompleteBooking marks a confirmed booking as completed after the trip.
// Owner of the trip only.
func CompleteBooking(db *gorm.DB, bookings *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		bookingId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		booking, err := bookings.Complete(userId, uint(bookingId))
		if err != nil {
			fail(c, err)
			return
		}

		services.LogActivity(db, userId, "booking_completed",
			fmt.Sprintf("Booking ID: %d", booking.ID), c.ClientIP())

		c.JSON(200, gin.H{"message": "Booking completed", "booking": booking})
	}
}

// MyBookings lists the authenticated rider's bookings, newest first,
// optionally filtered by status.
func MyBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		query := db.
			Preload("Trip").
			Preload("Trip.Vehicle").
			Preload("Trip.Owner").
			Preload("Trip.DepartureCity").
			Preload("Trip.ArrivalCity").
			Where("rider_user_id = ?", userId)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var bookings []models.Booking
		if err := query.
			Order("created_at DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}

// BookingRequests lists bookings on the authenticated owner's trips,
// pending first, optionally filtered by status.
func BookingRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		query := db.
			Preload("Trip").
			Preload("Trip.DepartureCity").
			Preload("Trip.ArrivalCity").
			Preload("Rider").
			Joins("JOIN trips ON trips.id = bookings.trip_id").
			Where("trips.user_id = ?", userId)
		if status := c.Query("status"); status != "" {
			query = query.Where("bookings.status = ?", status)
		}

		var bookings []models.Booking
		if err := query.
			Order("CASE WHEN bookings.status = 'pending' THEN 0 ELSE 1 END, bookings.created_at DESC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch booking requests"})
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}
