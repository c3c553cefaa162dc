package handlers

import (
	"fmt"
	"strconv"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateReviewInput struct {
	BookingID uint   `json:"bookingId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// CreateReview lets the rider of a completed booking review the trip
// owner. One review per booking.
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var input CreateReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var booking models.Booking
		if result := db.Preload("Trip").First(&booking, input.BookingID); result.Error != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		if booking.RiderUserID != userId {
			c.JSON(403, gin.H{"error": "You can only review your own bookings"})
			return
		}
		if booking.Status != models.BookingStatusCompleted {
			c.JSON(409, gin.H{"error": "Only completed trips can be reviewed"})
			return
		}

		var count int64
		db.Model(&models.Review{}).Where("booking_id = ?", booking.ID).Count(&count)
		if count > 0 {
			c.JSON(409, gin.H{"error": "You have already reviewed this trip"})
			return
		}

		review := models.Review{
			BookingID:      booking.ID,
			TripID:         booking.TripID,
			ReviewerUserID: userId,
			ReviewedUserID: booking.Trip.UserID,
			Rating:         input.Rating,
			Comment:        input.Comment,
		}

		if result := db.Create(&review); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create review"})
			return
		}

		services.LogActivity(db, userId, "review_created",
			fmt.Sprintf("Booking ID: %d, Rating: %d", booking.ID, input.Rating), c.ClientIP())

		c.JSON(201, gin.H{"message": "Review submitted. Thank you!", "review": review})
	}
}

// ListUserReviews returns the reviews left for a user together with their
// average rating.
func ListUserReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid user ID"})
			return
		}

		var reviews []models.Review
		if err := db.Preload("Reviewer").
			Where("reviewed_user_id = ?", uint(targetId)).
			Order("created_at DESC").
			Find(&reviews).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		var stats struct {
			Avg   float64
			Count int64
		}
		db.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
			Where("reviewed_user_id = ?", uint(targetId)).
			Scan(&stats)

		c.JSON(200, gin.H{
			"reviews":       reviews,
			"averageRating": stats.Avg,
			"totalReviews":  stats.Count,
		})
	}
}
