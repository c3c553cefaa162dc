package services

import (
	"testing"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/pkg/apperrors"
)

// Resizing applies a delta to the live counter instead of recomputing it
// from the caller's snapshot, so a booking landing between the owner's
// read and the resize keeps its seats held.
func TestResizeTripSeatsKeepsHeldSeats(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	rider := createTestUser(t, db, models.RoleRider, "rider")
	trip := createTestTrip(t, db, owner, 4)

	oldTotal := trip.SeatsTotal

	// Booking lands after the owner read the trip but before the resize.
	if _, err := svc.Create(rider.ID, trip.ID, 2); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if err := ResizeTripSeats(db, trip.ID, oldTotal, 6); err != nil {
		t.Fatalf("ResizeTripSeats returned error: %v", err)
	}

	var reloaded models.Trip
	if err := db.First(&reloaded, trip.ID).Error; err != nil {
		t.Fatalf("failed to reload trip: %v", err)
	}
	if reloaded.SeatsTotal != 6 {
		t.Errorf("seats total = %d, want 6", reloaded.SeatsTotal)
	}
	if reloaded.SeatsLeft != 4 {
		t.Errorf("seats left = %d, want 4 (2 held seats must stay held)", reloaded.SeatsLeft)
	}
}

func TestResizeTripSeatsRejectsBelowBooked(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	rider := createTestUser(t, db, models.RoleRider, "rider")
	trip := createTestTrip(t, db, owner, 4)

	if _, err := svc.Create(rider.ID, trip.ID, 3); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	err := ResizeTripSeats(db, trip.ID, 4, 2)
	if kind := apperrors.KindOf(err); kind != apperrors.KindInvalidState {
		t.Errorf("shrink below booked: kind = %v, want KindInvalidState", kind)
	}

	var reloaded models.Trip
	db.First(&reloaded, trip.ID)
	if reloaded.SeatsTotal != 4 || reloaded.SeatsLeft != 1 {
		t.Errorf("rejected resize changed the trip: total=%d left=%d, want 4/1",
			reloaded.SeatsTotal, reloaded.SeatsLeft)
	}
}

func TestResizeTripSeatsStaleTotal(t *testing.T) {
	db := newTestDB(t)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	trip := createTestTrip(t, db, owner, 4)

	// A resize based on an outdated seats_total loses to the guard.
	err := ResizeTripSeats(db, trip.ID, 5, 8)
	if kind := apperrors.KindOf(err); kind != apperrors.KindInvalidState {
		t.Errorf("stale total: kind = %v, want KindInvalidState", kind)
	}

	var reloaded models.Trip
	db.First(&reloaded, trip.ID)
	if reloaded.SeatsTotal != 4 || reloaded.SeatsLeft != 4 {
		t.Errorf("rejected resize changed the trip: total=%d left=%d, want 4/4",
			reloaded.SeatsTotal, reloaded.SeatsLeft)
	}
}
