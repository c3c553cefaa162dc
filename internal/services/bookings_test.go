package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	// A pooled in-memory sqlite gives each connection its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.City{},
		&models.Area{},
		&models.Vehicle{},
		&models.Trip{},
		&models.Booking{},
		&models.Notification{},
		&models.Review{},
		&models.ActivityLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

type recordedNotification struct {
	UserID uint
	Type   string
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	sent []recordedNotification
}

func (r *recordingNotifier) Notify(userID uint, ntype, title, message, link string) {
	r.sent = append(r.sent, recordedNotification{UserID: userID, Type: ntype})
}

var testUserSeq uint32

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole, tag string) *models.User {
	t.Helper()
	seq := atomic.AddUint32(&testUserSeq, 1)
	user := models.User{
		Name:       "Test " + tag,
		Email:      fmt.Sprintf("%s-%d@example.com", tag, seq),
		Phone:      fmt.Sprintf("0300%07d", seq),
		Role:       role,
		IsVerified: true,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", tag, err)
	}
	return &user
}

func createTestTrip(t *testing.T, db *gorm.DB, owner *models.User, seats int) *models.Trip {
	t.Helper()

	city := models.City{Name: fmt.Sprintf("City-%d-%d", owner.ID, seats)}
	if err := db.Create(&city).Error; err != nil {
		t.Fatalf("failed to create city: %v", err)
	}
	dest := models.City{Name: fmt.Sprintf("Dest-%d-%d", owner.ID, seats)}
	if err := db.Create(&dest).Error; err != nil {
		t.Fatalf("failed to create city: %v", err)
	}

	vehicle := models.Vehicle{
		UserID:      owner.ID,
		Type:        "Car",
		Make:        "Toyota",
		ModelName:   "Corolla",
		Year:        2020,
		PlateNumber: fmt.Sprintf("ABC-%d-%d", owner.ID, seats),
		Capacity:    seats,
		CityID:      city.ID,
		Status:      models.VehicleStatusVerified,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}

	trip := models.Trip{
		VehicleID:       vehicle.ID,
		UserID:          owner.ID,
		DepartureCityID: city.ID,
		ArrivalCityID:   dest.ID,
		DepartDatetime:  time.Now().Add(48 * time.Hour),
		SeatsTotal:      seats,
		SeatsLeft:       seats,
		PricePerSeat:    1500,
		Status:          models.TripStatusActive,
	}
	if err := db.Create(&trip).Error; err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	return &trip
}

func seatsLeft(t *testing.T, db *gorm.DB, tripID uint) int {
	t.Helper()
	var trip models.Trip
	if err := db.First(&trip, tripID).Error; err != nil {
		t.Fatalf("failed to reload trip: %v", err)
	}
	return trip.SeatsLeft
}

func TestCreateBookingHoldsSeats(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewBookingService(db, notifier)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	rider := createTestUser(t, db, models.RoleRider, "rider")
	trip := createTestTrip(t, db, owner, 4)

	booking, err := svc.Create(rider.ID, trip.ID, 3)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if booking.Status != models.BookingStatusPending {
		t.Errorf("new booking status = %s, want pending", booking.Status)
	}
	if booking.TotalPrice != 4500 {
		t.Errorf("total price = %v, want 4500", booking.TotalPrice)
	}
	if len(booking.BookingCode) != 8 {
		t.Errorf("booking code %q, want 8 characters", booking.BookingCode)
	}
	if got := seatsLeft(t, db, trip.ID); got != 1 {
		t.Errorf("seats left = %d, want 1", got)
	}

	if len(notifier.sent) != 1 || notifier.sent[0].UserID != owner.ID ||
		notifier.sent[0].Type != models.NotificationBookingRequest {
		t.Errorf("owner notification not sent, got %+v", notifier.sent)
	}
}

func TestCreateBookingInsufficientSeats(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	riderA := createTestUser(t, db, models.RoleRider, "riderA")
	riderB := createTestUser(t, db, models.RoleRider, "riderB")
	trip := createTestTrip(t, db, owner, 4)

	if _, err := svc.Create(riderA.ID, trip.ID, 3); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := svc.Create(riderB.ID, trip.ID, 2)
	if err == nil {
		t.Fatal("expected error booking 2 seats with 1 left")
	}
	if kind := apperrors.KindOf(err); kind != apperrors.KindInvalidArgument {
		t.Errorf("error kind = %v, want KindInvalidArgument", kind)
	}

	if got := seatsLeft(t, db, trip.ID); got != 1 {
		t.Errorf("seats left after rejected booking = %d, want 1", got)
	}
	var count int64
	db.Model(&models.Booking{}).Where("rider_user_id = ?", riderB.ID).Count(&count)
	if count != 0 {
		t.Errorf("rejected booking left %d rows behind", count)
	}
}

func TestCreateBookingOwnTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	trip := createTestTrip(t, db, owner, 4)

	_, err := svc.Create(owner.ID, trip.ID, 1)
	if err == nil {
		t.Fatal("expected error booking own trip")
	}
	if kind := apperrors.KindOf(err); kind != apperrors.KindInvalidArgument {
		t.Errorf("error kind = %v, want KindInvalidArgument", kind)
	}
}

func TestCreateBookingDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	rider := createTestUser(t, db, models.RoleRider, "rider")
	trip := createTestTrip(t, db, owner, 4)

	if _, err := svc.Create(rider.ID, trip.ID, 1); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := svc.Create(rider.ID, trip.ID, 1)
	if err == nil {
		t.Fatal("expected error on duplicate booking")
	}
	if kind := apperrors.KindOf(err); kind != apperrors.KindConflict {
		t.Errorf("error kind = %v, want KindConflict", kind)
	}

	// A cancelled booking no longer blocks a fresh one.
	var booking models.Booking
	db.Where("rider_user_id = ?", rider.ID).First(&booking)
	if _, err := svc.Cancel(rider.ID, booking.ID, "changed plans"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := svc.Create(rider.ID, trip.ID, 2); err != nil {
		t.Fatalf("rebooking after cancel failed: %v", err)
	}
}

func TestCreateBookingPastDeparture(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	rider := createTestUser(t, db, models.RoleRider, "rider")
	trip := createTestTrip(t, db, owner, 4)

	db.Model(&models.Trip{}).Where("id = ?", trip.ID).
		UpdateColumn("depart_datetime", time.Now().Add(-time.Hour))

	_, err := svc.Create(rider.ID, trip.ID, 1)
	if err == nil {
		t.Fatal("expected error booking a departed trip")
	}
	if kind := apperrors.KindOf(err); kind != apperrors.KindInvalidArgument {
		t.Errorf("error kind = %v, want KindInvalidArgument", kind)
	}
}

func TestConfirmBooking(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewBookingService(db, notifier)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	rider := createTestUser(t, db, models.RoleRider, "rider")
	stranger := createTestUser(t, db, models.RoleOwner, "stranger")
	trip := createTestTrip(t, db, owner, 4)

	booking, err := svc.Create(rider.ID, trip.ID, 2)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Confirm(stranger.ID, booking.ID); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Errorf("confirm by non-owner: kind = %v, want KindUnauthorized", apperrors.KindOf(err))
	}

	confirmed, err := svc.Confirm(owner.ID, booking.ID)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if confirmed.Status != models.BookingStatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
	if got := seatsLeft(t, db, trip.ID); got != 2 {
		t.Errorf("confirm changed seats: left = %d, want 2", got)
	}

	if _, err := svc.Confirm(owner.ID, booking.ID); apperrors.KindOf(err) != apperrors.KindInvalidState {
		t.Errorf("double confirm: kind = %v, want KindInvalidState", apperrors.KindOf(err))
	}

	last := notifier.sent[len(notifier.sent)-1]
	if last.UserID != rider.ID || last.Type != models.NotificationBookingConfirmed {
		t.Errorf("rider confirmation notification not sent, got %+v", last)
	}
}

func TestCancelRestoresSeatsOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	rider := createTestUser(t, db, models.RoleRider, "rider")
	trip := createTestTrip(t, db, owner, 4)

	booking, err := svc.Create(rider.ID, trip.ID, 3)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	cancelled, err := svc.Cancel(rider.ID, booking.ID, "")
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if cancelled.CancellationReason != "No reason provided" {
		t.Errorf("reason = %q, want default", cancelled.CancellationReason)
	}
	if got := seatsLeft(t, db, trip.ID); got != 4 {
		t.Errorf("seats left after cancel = %d, want 4", got)
	}

	// A repeated cancel must fail and must not re-credit seats.
	if _, err := svc.Cancel(rider.ID, booking.ID, "again"); apperrors.KindOf(err) != apperrors.KindInvalidState {
		t.Errorf("double cancel: kind = %v, want KindInvalidState", apperrors.KindOf(err))
	}
	if got := seatsLeft(t, db, trip.ID); got != 4 {
		t.Errorf("seats left after double cancel = %d, want 4", got)
	}
}

func TestCancelByOwner(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewBookingService(db, notifier)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	rider := createTestUser(t, db, models.RoleRider, "rider")
	stranger := createTestUser(t, db, models.RoleRider, "stranger")
	trip := createTestTrip(t, db, owner, 4)

	booking, err := svc.Create(rider.ID, trip.ID, 2)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Cancel(stranger.ID, booking.ID, ""); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Errorf("cancel by stranger: kind = %v, want KindUnauthorized", apperrors.KindOf(err))
	}

	if _, err := svc.Cancel(owner.ID, booking.ID, "vehicle breakdown"); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}

	last := notifier.sent[len(notifier.sent)-1]
	if last.UserID != rider.ID || last.Type != models.NotificationBookingCancelled {
		t.Errorf("rider was not notified of owner cancel, got %+v", last)
	}
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	rider := createTestUser(t, db, models.RoleRider, "rider")
	trip := createTestTrip(t, db, owner, 4)

	booking, err := svc.Create(rider.ID, trip.ID, 1)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Complete(owner.ID, booking.ID); apperrors.KindOf(err) != apperrors.KindInvalidState {
		t.Errorf("complete pending: kind = %v, want KindInvalidState", apperrors.KindOf(err))
	}

	if _, err := svc.Confirm(owner.ID, booking.ID); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}

	if _, err := svc.Complete(rider.ID, booking.ID); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Errorf("complete by rider: kind = %v, want KindUnauthorized", apperrors.KindOf(err))
	}

	completed, err := svc.Complete(owner.ID, booking.ID)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if completed.Status != models.BookingStatusCompleted {
		t.Errorf("status = %s, want completed", completed.Status)
	}

	// Completion is terminal: cancel and re-complete both fail.
	if _, err := svc.Cancel(rider.ID, booking.ID, ""); apperrors.KindOf(err) != apperrors.KindInvalidState {
		t.Errorf("cancel completed: kind = %v, want KindInvalidState", apperrors.KindOf(err))
	}
	if _, err := svc.Complete(owner.ID, booking.ID); apperrors.KindOf(err) != apperrors.KindInvalidState {
		t.Errorf("double complete: kind = %v, want KindInvalidState", apperrors.KindOf(err))
	}
}

// TestBookingSeatLedger walks the full lifecycle on a 4-seat trip and
// checks the seat count at every step.
func TestBookingSeatLedger(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, nil)

	owner := createTestUser(t, db, models.RoleOwner, "owner")
	riderA := createTestUser(t, db, models.RoleRider, "riderA")
	riderB := createTestUser(t, db, models.RoleRider, "riderB")
	trip := createTestTrip(t, db, owner, 4)

	bookingA, err := svc.Create(riderA.ID, trip.ID, 3)
	if err != nil {
		t.Fatalf("rider A booking failed: %v", err)
	}
	if got := seatsLeft(t, db, trip.ID); got != 1 {
		t.Fatalf("after A books 3: seats left = %d, want 1", got)
	}

	if _, err := svc.Create(riderB.ID, trip.ID, 2); err == nil {
		t.Fatal("rider B booking 2 of 1 remaining seats should fail")
	}
	if got := seatsLeft(t, db, trip.ID); got != 1 {
		t.Fatalf("after B rejected: seats left = %d, want 1", got)
	}

	if _, err := svc.Confirm(owner.ID, bookingA.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if got := seatsLeft(t, db, trip.ID); got != 1 {
		t.Fatalf("after confirm: seats left = %d, want 1", got)
	}

	if _, err := svc.Cancel(riderA.ID, bookingA.ID, "change of plans"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := seatsLeft(t, db, trip.ID); got != 4 {
		t.Fatalf("after cancel: seats left = %d, want 4", got)
	}

	if _, err := svc.Complete(owner.ID, bookingA.ID); apperrors.KindOf(err) != apperrors.KindInvalidState {
		t.Errorf("complete cancelled booking: kind = %v, want KindInvalidState", apperrors.KindOf(err))
	}

	// Rider B can now take the whole vehicle.
	if _, err := svc.Create(riderB.ID, trip.ID, 4); err != nil {
		t.Fatalf("rider B rebooking failed: %v", err)
	}
	if got := seatsLeft(t, db, trip.ID); got != 0 {
		t.Fatalf("after B books 4: seats left = %d, want 0", got)
	}
}
