package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func putJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type sentNotification struct {
	UserID uint
	Type   string
}

type notifierStub struct {
	sent []sentNotification
}

func (n *notifierStub) Notify(userID uint, ntype, title, message, link string) {
	n.sent = append(n.sent, sentNotification{UserID: userID, Type: ntype})
}

func newTripRouter(db *gorm.DB, userID uint, role models.UserRole, notifier services.Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("role", string(role))
	})
	r.PUT("/api/trips/:id", UpdateTrip(db))
	r.POST("/api/trips/:id/cancel", CancelTrip(db, notifier))
	return r
}

type tripFixture struct {
	owner     *models.User
	riderA    *models.User
	riderB    *models.User
	trip      *models.Trip
	pending   *models.Booking
	confirmed *models.Booking
}

// seedTripWithBookings builds a 4-seat trip with 3 seats held: 2 by a
// pending booking and 1 by a confirmed one.
func seedTripWithBookings(t *testing.T, db *gorm.DB) *tripFixture {
	t.Helper()

	owner := &models.User{Name: "Owner", Email: "owner@example.com", Phone: "03001111111", Role: models.RoleOwner, IsVerified: true}
	riderA := &models.User{Name: "Rider A", Email: "ridera@example.com", Phone: "03002222222", Role: models.RoleRider, IsVerified: true}
	riderB := &models.User{Name: "Rider B", Email: "riderb@example.com", Phone: "03003333333", Role: models.RoleRider, IsVerified: true}
	for _, u := range []*models.User{owner, riderA, riderB} {
		u.SetPassword("password123")
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	from := models.City{Name: "Karachi"}
	to := models.City{Name: "Lahore"}
	db.Create(&from)
	db.Create(&to)

	vehicle := models.Vehicle{
		UserID: owner.ID, Type: "Car", Make: "Toyota", ModelName: "Corolla",
		Year: 2020, PlateNumber: "TRP-001", Capacity: 6,
		CityID: from.ID, Status: models.VehicleStatusVerified,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}

	trip := &models.Trip{
		VehicleID: vehicle.ID, UserID: owner.ID,
		DepartureCityID: from.ID, ArrivalCityID: to.ID,
		DepartDatetime: time.Now().Add(48 * time.Hour),
		SeatsTotal:     4, SeatsLeft: 1, PricePerSeat: 1500,
		Status: models.TripStatusActive,
	}
	if err := db.Create(trip).Error; err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	pending := &models.Booking{
		TripID: trip.ID, RiderUserID: riderA.ID,
		SeatsBooked: 2, TotalPrice: 3000,
		BookingCode: "AAAA1111", Status: models.BookingStatusPending,
	}
	confirmed := &models.Booking{
		TripID: trip.ID, RiderUserID: riderB.ID,
		SeatsBooked: 1, TotalPrice: 1500,
		BookingCode: "BBBB2222", Status: models.BookingStatusConfirmed,
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	if err := db.Create(confirmed).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	return &tripFixture{owner: owner, riderA: riderA, riderB: riderB, trip: trip, pending: pending, confirmed: confirmed}
}

func tripURL(id uint, suffix string) string {
	return fmt.Sprintf("/api/trips/%d%s", id, suffix)
}

func TestCancelTripCascadesToBookings(t *testing.T) {
	db := newTestDB(t)
	f := seedTripWithBookings(t, db)

	// A completed booking is terminal and must not be touched.
	done := models.Booking{
		TripID: f.trip.ID, RiderUserID: f.riderB.ID,
		SeatsBooked: 1, TotalPrice: 1500,
		BookingCode: "CCCC3333", Status: models.BookingStatusCompleted,
	}
	if err := db.Create(&done).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	notifier := &notifierStub{}
	r := newTripRouter(db, f.owner.ID, models.RoleOwner, notifier)

	w := postJSON(t, r, tripURL(f.trip.ID, "/cancel"), map[string]string{})
	if w.Code != 200 {
		t.Fatalf("cancel trip status = %d, body = %s", w.Code, w.Body.String())
	}

	var trip models.Trip
	db.First(&trip, f.trip.ID)
	if trip.Status != models.TripStatusCancelled {
		t.Errorf("trip status = %s, want cancelled", trip.Status)
	}
	// The trip is terminally unbookable; its counter is left as-is.
	if trip.SeatsLeft != 1 {
		t.Errorf("seats left = %d, want 1 (no restore on trip cancel)", trip.SeatsLeft)
	}

	for _, id := range []uint{f.pending.ID, f.confirmed.ID} {
		var b models.Booking
		db.First(&b, id)
		if b.Status != models.BookingStatusCancelled {
			t.Errorf("booking %d status = %s, want cancelled", id, b.Status)
		}
		if b.CancellationReason != "Trip cancelled by owner" {
			t.Errorf("booking %d reason = %q", id, b.CancellationReason)
		}
	}

	var untouched models.Booking
	db.First(&untouched, done.ID)
	if untouched.Status != models.BookingStatusCompleted {
		t.Errorf("completed booking status = %s, want completed", untouched.Status)
	}

	notified := map[uint]bool{}
	for _, n := range notifier.sent {
		if n.Type != models.NotificationTripCancelled {
			t.Errorf("notification type = %s, want trip_cancelled", n.Type)
		}
		notified[n.UserID] = true
	}
	if len(notifier.sent) != 2 || !notified[f.riderA.ID] || !notified[f.riderB.ID] {
		t.Errorf("riders with live bookings not notified, got %+v", notifier.sent)
	}
}

func TestCancelTripRequiresOwner(t *testing.T) {
	db := newTestDB(t)
	f := seedTripWithBookings(t, db)

	r := newTripRouter(db, f.riderA.ID, models.RoleRider, &notifierStub{})
	if w := postJSON(t, r, tripURL(f.trip.ID, "/cancel"), map[string]string{}); w.Code != 403 {
		t.Errorf("cancel by rider status = %d, want 403", w.Code)
	}

	// Cancelling twice is rejected.
	asOwner := newTripRouter(db, f.owner.ID, models.RoleOwner, &notifierStub{})
	if w := postJSON(t, asOwner, tripURL(f.trip.ID, "/cancel"), map[string]string{}); w.Code != 200 {
		t.Fatalf("first cancel status = %d", w.Code)
	}
	if w := postJSON(t, asOwner, tripURL(f.trip.ID, "/cancel"), map[string]string{}); w.Code != 409 {
		t.Errorf("second cancel status = %d, want 409", w.Code)
	}
}

func TestUpdateTripResizesSeatsByDelta(t *testing.T) {
	db := newTestDB(t)
	f := seedTripWithBookings(t, db)

	r := newTripRouter(db, f.owner.ID, models.RoleOwner, &notifierStub{})

	// 4 total / 1 left, 3 booked: growing to 6 frees two more seats.
	w := putJSON(t, r, tripURL(f.trip.ID, ""), map[string]interface{}{"seatsTotal": 6})
	if w.Code != 200 {
		t.Fatalf("resize status = %d, body = %s", w.Code, w.Body.String())
	}

	var trip models.Trip
	db.First(&trip, f.trip.ID)
	if trip.SeatsTotal != 6 || trip.SeatsLeft != 3 {
		t.Errorf("after grow: total=%d left=%d, want 6/3", trip.SeatsTotal, trip.SeatsLeft)
	}

	// Shrinking past the 3 booked seats is refused without side effects.
	w = putJSON(t, r, tripURL(f.trip.ID, ""), map[string]interface{}{"seatsTotal": 2})
	if w.Code != 409 {
		t.Errorf("shrink below booked status = %d, want 409", w.Code)
	}
	db.First(&trip, f.trip.ID)
	if trip.SeatsTotal != 6 || trip.SeatsLeft != 3 {
		t.Errorf("after rejected shrink: total=%d left=%d, want 6/3", trip.SeatsTotal, trip.SeatsLeft)
	}
}
