package services

import (
	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/pkg/apperrors"
	"gorm.io/gorm"
)

// ResizeTripSeats changes seats_total and shifts seats_left by the same
// delta in one conditional UPDATE. Seats held by bookings stay held even
// when a booking lands between the caller's read and this write; the
// WHERE clause rejects a shrink past the seats already booked and any
// resize racing another one.
func ResizeTripSeats(db *gorm.DB, tripID uint, oldTotal, newTotal int) error {
	delta := newTotal - oldTotal
	res := db.Model(&models.Trip{}).
		Where("id = ? AND seats_total = ? AND seats_left + ? >= 0", tripID, oldTotal, delta).
		Updates(map[string]interface{}{
			"seats_total": newTotal,
			"seats_left":  gorm.Expr("seats_left + ?", delta),
		})
	if res.Error != nil {
		return apperrors.Internal("Failed to resize trip seats", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.InvalidState("Cannot reduce seats below those already booked")
	}
	return nil
}
