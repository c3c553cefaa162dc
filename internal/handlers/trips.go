package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateTripInput struct {
	VehicleID           uint    `json:"vehicleId" binding:"required"`
	DepartureCityID     uint    `json:"departureCityId" binding:"required"`
	DepartureAreaID     *uint   `json:"departureAreaId"`
	ArrivalCityID       uint    `json:"arrivalCityId" binding:"required"`
	ArrivalAreaID       *uint   `json:"arrivalAreaId"`
	DepartDatetime      string  `json:"departDatetime" binding:"required"`
	SeatsTotal          int     `json:"seatsTotal" binding:"required,min=1"`
	PricePerSeat        float64 `json:"pricePerSeat" binding:"required,gt=0"`
	LuggageAllowance    string  `json:"luggageAllowance"`
	Notes               string  `json:"notes"`
	AllowPartialBooking *bool   `json:"allowPartialBooking"`
}

// CreateTrip posts a trip on a verified vehicle owned by the caller.
// Seats offered cannot exceed the vehicle's capacity, and the trip opens
// with every seat available.
func CreateTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var input CreateTripInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var vehicle models.Vehicle
		if result := db.First(&vehicle, input.VehicleID); result.Error != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}
		if vehicle.UserID != userId {
			c.JSON(403, gin.H{"error": "You can only post trips with your own vehicles"})
			return
		}
		if vehicle.Status != models.VehicleStatusVerified {
			c.JSON(409, gin.H{"error": "Vehicle must be verified before posting trips"})
			return
		}
		if input.SeatsTotal > vehicle.Capacity {
			c.JSON(400, gin.H{"error": fmt.Sprintf("Seats cannot exceed vehicle capacity of %d", vehicle.Capacity)})
			return
		}

		departAt, err := time.ParseInLocation("2006-01-02 15:04:05", input.DepartDatetime, time.Local)
		if err != nil {
			departAt, err = time.Parse(time.RFC3339, input.DepartDatetime)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid departure time. Use YYYY-MM-DD HH:MM:SS"})
				return
			}
		}
		if !departAt.After(time.Now()) {
			c.JSON(400, gin.H{"error": "Departure time must be in the future"})
			return
		}

		for _, cityID := range []uint{input.DepartureCityID, input.ArrivalCityID} {
			var count int64
			db.Model(&models.City{}).Where("id = ?", cityID).Count(&count)
			if count == 0 {
				c.JSON(400, gin.H{"error": "Valid departure and arrival cities are required"})
				return
			}
		}
		if input.DepartureCityID == input.ArrivalCityID &&
			(input.DepartureAreaID == nil || input.ArrivalAreaID == nil ||
				*input.DepartureAreaID == *input.ArrivalAreaID) {
			c.JSON(400, gin.H{"error": "Departure and arrival locations must differ"})
			return
		}

		if input.DepartureAreaID != nil {
			var count int64
			db.Model(&models.Area{}).
				Where("id = ? AND city_id = ?", *input.DepartureAreaID, input.DepartureCityID).Count(&count)
			if count == 0 {
				c.JSON(400, gin.H{"error": "Departure area does not belong to the departure city"})
				return
			}
		}
		if input.ArrivalAreaID != nil {
			var count int64
			db.Model(&models.Area{}).
				Where("id = ? AND city_id = ?", *input.ArrivalAreaID, input.ArrivalCityID).Count(&count)
			if count == 0 {
				c.JSON(400, gin.H{"error": "Arrival area does not belong to the arrival city"})
				return
			}
		}

		allowPartial := true
		if input.AllowPartialBooking != nil {
			allowPartial = *input.AllowPartialBooking
		}

		trip := models.Trip{
			VehicleID:           vehicle.ID,
			UserID:              userId,
			DepartureCityID:     input.DepartureCityID,
			DepartureAreaID:     input.DepartureAreaID,
			ArrivalCityID:       input.ArrivalCityID,
			ArrivalAreaID:       input.ArrivalAreaID,
			DepartDatetime:      departAt,
			SeatsTotal:          input.SeatsTotal,
			SeatsLeft:           input.SeatsTotal,
			PricePerSeat:        input.PricePerSeat,
			LuggageAllowance:    input.LuggageAllowance,
			Notes:               input.Notes,
			AllowPartialBooking: allowPartial,
			Status:              models.TripStatusActive,
		}

		if result := db.Create(&trip); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create trip"})
			return
		}

		services.InvalidateSearchCache(c.Request.Context())
		services.LogActivity(db, userId, "trip_created",
			fmt.Sprintf("Trip ID: %d", trip.ID), c.ClientIP())

		c.JSON(201, gin.H{"message": "Trip posted successfully", "trip": trip})
	}
}

// SearchTrips is the public trip search. Result pages are cached briefly
// in Redis keyed by the full filter set.
func SearchTrips(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := services.TripSearchParams{
			FromCityID:  uintQuery(c, "fromCityId"),
			FromAreaID:  uintQuery(c, "fromAreaId"),
			ToCityID:    uintQuery(c, "toCityId"),
			ToAreaID:    uintQuery(c, "toAreaId"),
			Date:        c.Query("date"),
			MinSeats:    intQuery(c, "seats"),
			VehicleType: c.Query("vehicleType"),
			MaxPrice:    floatQuery(c, "maxPrice"),
			Sort:        c.Query("sort"),
			Page:        intQuery(c, "page"),
		}

		ctx := c.Request.Context()
		if cached, ok := services.GetCachedSearchPage(ctx, params.CacheKey()); ok {
			c.Data(200, "application/json", cached)
			return
		}

		result, err := services.SearchTrips(db, params)
		if err != nil {
			fail(c, err)
			return
		}

		if payload, err := json.Marshal(result); err == nil {
			services.CacheSearchPage(ctx, params.CacheKey(), payload)
			c.Data(200, "application/json", payload)
			return
		}
		c.JSON(200, result)
	}
}

// GetTrip returns a trip with its owner's review aggregate and the most
// recent reviews left for them.
func GetTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid trip ID"})
			return
		}

		var trip models.Trip
		if result := db.
			Preload("Vehicle").
			Preload("Owner").
			Preload("DepartureCity").
			Preload("DepartureArea").
			Preload("ArrivalCity").
			Preload("ArrivalArea").
			First(&trip, uint(tripId)); result.Error != nil {
			c.JSON(404, gin.H{"error": "Trip not found"})
			return
		}

		// Riders never see the owner's plate or documents before booking.
		trip.Vehicle.PlateNumber = ""
		trip.Vehicle.Docs = nil

		var stats struct {
			Avg   float64
			Count int64
		}
		db.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
			Where("reviewed_user_id = ?", trip.UserID).
			Scan(&stats)

		var recent []models.Review
		db.Preload("Reviewer").
			Where("reviewed_user_id = ?", trip.UserID).
			Order("created_at DESC").Limit(5).Find(&recent)

		c.JSON(200, gin.H{
			"trip": trip,
			"ownerRating": gin.H{
				"average": stats.Avg,
				"count":   stats.Count,
			},
			"recentReviews": recent,
		})
	}
}

type UpdateTripInput struct {
	DepartDatetime   string  `json:"departDatetime"`
	SeatsTotal       int     `json:"seatsTotal"`
	PricePerSeat     float64 `json:"pricePerSeat"`
	LuggageAllowance string  `json:"luggageAllowance"`
	Notes            string  `json:"notes"`
}

// UpdateTrip lets the owner adjust departure, seats, price, luggage and
// notes on an active trip before departure. Route and vehicle are fixed.
// Shrinking seats_total never cuts into seats already held by bookings.
func UpdateTrip(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		tripId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid trip ID"})
			return
		}

		var trip models.Trip
		if result := db.First(&trip, uint(tripId)); result.Error != nil {
			c.JSON(404, gin.H{"error": "Trip not found"})
			return
		}
		if trip.UserID != userId {
			c.JSON(403, gin.H{"error": "You can only update your own trips"})
			return
		}
		if trip.Status != models.TripStatusActive {
			c.JSON(409, gin.H{"error": "Only active trips can be updated"})
			return
		}
		if !trip.DepartDatetime.After(time.Now()) {
			c.JSON(409, gin.H{"error": "Cannot update a trip after departure"})
			return
		}

		var input UpdateTripInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if input.DepartDatetime != "" {
			departAt, err := time.ParseInLocation("2006-01-02 15:04:05", input.DepartDatetime, time.Local)
			if err != nil {
				departAt, err = time.Parse(time.RFC3339, input.DepartDatetime)
				if err != nil {
					c.JSON(400, gin.H{"error": "Invalid departure time. Use YYYY-MM-DD HH:MM:SS"})
					return
				}
			}
			if !departAt.After(time.Now()) {
				c.JSON(400, gin.H{"error": "Departure time must be in the future"})
				return
			}
			updates["depart_datetime"] = departAt
		}
		seatsResized := false
		if input.SeatsTotal != 0 && input.SeatsTotal != trip.SeatsTotal {
			var vehicle models.Vehicle
			if err := db.First(&vehicle, trip.VehicleID).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to load vehicle"})
				return
			}
			if input.SeatsTotal > vehicle.Capacity {
				c.JSON(400, gin.H{"error": fmt.Sprintf("Seats cannot exceed vehicle capacity of %d", vehicle.Capacity)})
				return
			}
			if err := services.ResizeTripSeats(db, trip.ID, trip.SeatsTotal, input.SeatsTotal); err != nil {
				fail(c, err)
				return
			}
			seatsResized = true
		}
		if input.PricePerSeat != 0 {
			if input.PricePerSeat < 0 {
				c.JSON(400, gin.H{"error": "Price per seat must be positive"})
				return
			}
			updates["price_per_seat"] = input.PricePerSeat
		}
		if input.LuggageAllowance != "" {
			updates["luggage_allowance"] = input.LuggageAllowance
		}
		if input.Notes != "" {
			updates["notes"] = input.Notes
		}

		if len(updates) == 0 && !seatsResized {
			c.JSON(400, gin.H{"error": "Nothing to update"})
			return
		}

		if len(updates) > 0 {
			if err := db.Model(&trip).Updates(updates).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to update trip"})
				return
			}
		}
		db.First(&trip, trip.ID)

		services.InvalidateSearchCache(c.Request.Context())
		services.LogActivity(db, userId, "trip_updated",
			fmt.Sprintf("Trip ID: %d", trip.ID), c.ClientIP())

		c.JSON(200, gin.H{"message": "Trip updated successfully", "trip": trip})
	}
}

// CancelTrip cancels an active trip and every non-terminal booking on it.
// Seats are not restored: the trip itself is no longer bookable.
func CancelTrip(db *gorm.DB, notifier services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		tripId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid trip ID"})
			return
		}

		var trip models.Trip
		if result := db.First(&trip, uint(tripId)); result.Error != nil {
			c.JSON(404, gin.H{"error": "Trip not found"})
			return
		}
		if trip.UserID != userId {
			c.JSON(403, gin.H{"error": "You can only cancel your own trips"})
			return
		}
		if trip.Status != models.TripStatusActive {
			c.JSON(409, gin.H{"error": "Trip is already cancelled"})
			return
		}

		var affected []models.Booking
		db.Where("trip_id = ? AND status IN ?", trip.ID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
			Find(&affected)

		tx := db.Begin()
		if tx.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel trip"})
			return
		}
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Model(&models.Trip{}).
			Where("id = ? AND status = ?", trip.ID, models.TripStatusActive).
			Update("status", models.TripStatusCancelled).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to cancel trip"})
			return
		}

		if err := tx.Model(&models.Booking{}).
			Where("trip_id = ? AND status IN ?", trip.ID,
				[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
			Updates(map[string]interface{}{
				"status":              models.BookingStatusCancelled,
				"cancellation_reason": "Trip cancelled by owner",
			}).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to cancel bookings"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel trip"})
			return
		}

		if notifier != nil {
			for _, b := range affected {
				notifier.Notify(b.RiderUserID, models.NotificationTripCancelled,
					"Trip Cancelled",
					"A trip you booked has been cancelled by the vehicle owner.", "")
			}
		}

		services.InvalidateSearchCache(c.Request.Context())
		services.LogActivity(db, userId, "trip_cancelled",
			fmt.Sprintf("Trip ID: %d, Bookings affected: %d", trip.ID, len(affected)), c.ClientIP())

		c.JSON(200, gin.H{"message": "Trip cancelled successfully"})
	}
}

// MyTrips lists the authenticated owner's trips, newest departure first,
// optionally filtered by status, with pending booking counts.
func MyTrips(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		query := db.
			Preload("Vehicle").
			Preload("DepartureCity").
			Preload("ArrivalCity").
			Where("user_id = ?", userId)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var trips []models.Trip
		if err := query.Order("depart_datetime DESC").Find(&trips).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch trips"})
			return
		}

		type tripWithCounts struct {
			models.Trip
			PendingBookings int64 `json:"pendingBookings"`
			TotalBookings   int64 `json:"totalBookings"`
		}
		out := make([]tripWithCounts, 0, len(trips))
		for _, trip := range trips {
			item := tripWithCounts{Trip: trip}
			db.Model(&models.Booking{}).Where("trip_id = ?", trip.ID).Count(&item.TotalBookings)
			db.Model(&models.Booking{}).
				Where("trip_id = ? AND status = ?", trip.ID, models.BookingStatusPending).
				Count(&item.PendingBookings)
			out = append(out, item)
		}

		c.JSON(200, gin.H{"trips": out})
	}
}

func uintQuery(c *gin.Context, key string) uint {
	v, _ := strconv.ParseUint(c.Query(key), 10, 32)
	return uint(v)
}

func intQuery(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}

func floatQuery(c *gin.Context, key string) float64 {
	v, _ := strconv.ParseFloat(c.Query(key), 64)
	return v
}
