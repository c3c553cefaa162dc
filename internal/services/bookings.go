package services

import (
	"fmt"
	"log"
	"time"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/pkg/apperrors"
	"github.com/goswift/goswift-backend/pkg/utils"
	"gorm.io/gorm"
)

// BookingService owns the booking lifecycle: create -> confirm/cancel ->
// complete, with the seat ledger on trips kept in lockstep. Seat counts
// move in exactly two places: the atomic decrement in Create and the
// restore in Cancel.
type BookingService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewBookingService(db *gorm.DB, notifier Notifier) *BookingService {
	return &BookingService{db: db, notifier: notifier}
}

func (s *BookingService) notify(userID uint, ntype, title, message string) {
	if s.notifier != nil {
		s.notifier.Notify(userID, ntype, title, message, "")
	}
}

// Create books seats on a trip for a rider. The seat hold is taken with a
// single conditional UPDATE checked by affected-row count, so two riders
// racing for the last seat cannot both win.
func (s *BookingService) Create(riderID, tripID uint, seats int) (*models.Booking, error) {
	if seats < 1 {
		return nil, apperrors.InvalidArgument("At least one seat must be booked")
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, apperrors.Internal("Failed to start transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var trip models.Trip
	if err := tx.First(&trip, tripID).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.NotFound("Trip not found or not available")
	}

	if trip.Status != models.TripStatusActive {
		tx.Rollback()
		return nil, apperrors.NotFound("Trip not found or not available")
	}

	if trip.UserID == riderID {
		tx.Rollback()
		return nil, apperrors.InvalidArgument("You cannot book your own trip")
	}

	if !trip.DepartDatetime.After(time.Now()) {
		tx.Rollback()
		return nil, apperrors.InvalidArgument("Cannot book past trips")
	}

	if seats > trip.SeatsLeft {
		tx.Rollback()
		return nil, apperrors.InvalidArgument("Not enough seats available")
	}

	var existing int64
	if err := tx.Model(&models.Booking{}).
		Where("trip_id = ? AND rider_user_id = ? AND status IN ?",
			tripID, riderID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Count(&existing).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}
	if existing > 0 {
		tx.Rollback()
		return nil, apperrors.Conflict("You already have a booking for this trip")
	}

	// Atomic seat hold: the WHERE clause re-checks availability so a
	// concurrent booking cannot push seats_left below zero.
	res := tx.Model(&models.Trip{}).
		Where("id = ? AND status = ? AND seats_left >= ?", tripID, models.TripStatusActive, seats).
		UpdateColumn("seats_left", gorm.Expr("seats_left - ?", seats))
	if res.Error != nil {
		tx.Rollback()
		return nil, apperrors.Internal("Failed to reserve seats", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, apperrors.Conflict("Not enough seats available")
	}

	booking := models.Booking{
		TripID:      tripID,
		RiderUserID: riderID,
		SeatsBooked: seats,
		TotalPrice:  trip.PricePerSeat * float64(seats),
		BookingCode: utils.GenerateBookingCode(),
		Status:      models.BookingStatusPending,
	}

	if err := tx.Create(&booking).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal("Failed to commit booking", err)
	}

	var rider models.User
	riderName := "A rider"
	if err := s.db.First(&rider, riderID).Error; err == nil {
		riderName = rider.Name
	}
	s.notify(trip.UserID, models.NotificationBookingRequest, "New Booking Request",
		fmt.Sprintf("%s requested to book %d seat(s) for your trip.", riderName, seats))

	// Best-effort email alongside the in-app notification.
	var owner models.User
	if err := s.db.First(&owner, trip.UserID).Error; err == nil {
		if err := utils.SendBookingRequestEmail(owner.Email, riderName, seats); err != nil {
			log.Printf("Failed to send booking request email to %s: %v", owner.Email, err)
		}
	}

	return &booking, nil
}

// Confirm transitions a pending booking to confirmed. Owner-only.
func (s *BookingService) Confirm(ownerID, bookingID uint) (*models.Booking, error) {
	booking, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Trip.UserID != ownerID {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	if !booking.Status.CanTransitionTo(models.BookingStatusConfirmed) {
		return nil, apperrors.InvalidState("Booking is not pending")
	}

	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingStatusPending).
		Update("status", models.BookingStatusConfirmed)
	if res.Error != nil {
		return nil, apperrors.Internal("Failed to confirm booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.InvalidState("Booking is not pending")
	}

	booking.Status = models.BookingStatusConfirmed
	s.notify(booking.RiderUserID, models.NotificationBookingConfirmed, "Booking Confirmed",
		"Your booking has been confirmed by the vehicle owner.")

	return booking, nil
}

// Cancel transitions a non-terminal booking to cancelled and restores the
// seats it held. The status flip is a conditional UPDATE on non-terminal
// states, so a repeated cancel loses the race, fails, and never
// re-credits seats.
func (s *BookingService) Cancel(callerID, bookingID uint, reason string) (*models.Booking, error) {
	booking, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.RiderUserID != callerID && booking.Trip.UserID != callerID {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	if booking.Status.Terminal() {
		return nil, apperrors.InvalidState("Cannot cancel this booking")
	}

	if reason == "" {
		reason = "No reason provided"
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, apperrors.Internal("Failed to start transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	res := tx.Model(&models.Booking{}).
		Where("id = ? AND status IN ?", bookingID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Updates(map[string]interface{}{
			"status":              models.BookingStatusCancelled,
			"cancellation_reason": reason,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, apperrors.Internal("Failed to cancel booking", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, apperrors.InvalidState("Cannot cancel this booking")
	}

	// Restore exactly what Create decremented.
	if err := tx.Model(&models.Trip{}).
		Where("id = ?", booking.TripID).
		UpdateColumn("seats_left", gorm.Expr("seats_left + ?", booking.SeatsBooked)).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal("Failed to restore seats", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.Internal("Failed to commit cancellation", err)
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancellationReason = reason

	notifyUserID := booking.Trip.UserID
	if callerID == booking.Trip.UserID {
		notifyUserID = booking.RiderUserID
	}
	s.notify(notifyUserID, models.NotificationBookingCancelled, "Booking Cancelled",
		"A booking has been cancelled.")

	return booking, nil
}

// Complete transitions a confirmed booking to completed. Owner-only.
func (s *BookingService) Complete(ownerID, bookingID uint) (*models.Booking, error) {
	booking, err := s.load(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Trip.UserID != ownerID {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	if !booking.Status.CanTransitionTo(models.BookingStatusCompleted) {
		return nil, apperrors.InvalidState("Only confirmed bookings can be completed")
	}

	res := s.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingStatusConfirmed).
		Update("status", models.BookingStatusCompleted)
	if res.Error != nil {
		return nil, apperrors.Internal("Failed to complete booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.InvalidState("Only confirmed bookings can be completed")
	}

	booking.Status = models.BookingStatusCompleted
	s.notify(booking.RiderUserID, models.NotificationTripCompleted, "Trip Completed",
		"Your trip has been completed. Please leave a review!")

	return booking, nil
}

func (s *BookingService) load(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Preload("Trip").First(&booking, bookingID).Error; err != nil {
		return nil, apperrors.NotFound("Booking not found")
	}
	return &booking, nil
}
