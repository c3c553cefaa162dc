package database

import (
	"github.com/goswift/goswift-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.City{},
		&models.Area{},
		&models.Vehicle{},
		&models.Trip{},
		&models.Booking{},
		&models.Notification{},
		&models.Review{},
		&models.ActivityLog{},
	)
	if err != nil {
		return err
	}

	// Status and role check constraints
	constraints := []struct {
		table, name, check string
	}{
		{"users", "users_role_check", "role IN ('owner', 'rider', 'admin')"},
		{"vehicles", "vehicles_status_check", "status IN ('pending', 'verified', 'rejected')"},
		{"trips", "trips_status_check", "status IN ('active', 'cancelled')"},
		{"trips", "trips_seats_check", "seats_left >= 0 AND seats_left <= seats_total"},
		{"bookings", "bookings_status_check", "status IN ('pending', 'confirmed', 'cancelled', 'completed')"},
		{"bookings", "bookings_seats_check", "seats_booked >= 1"},
		{"reviews", "reviews_rating_check", "rating BETWEEN 1 AND 5"},
	}
	for _, c := range constraints {
		db.Exec("ALTER TABLE " + c.table + " DROP CONSTRAINT IF EXISTS " + c.name)
		if err := db.Exec("ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " CHECK (" + c.check + ")").Error; err != nil {
			return err
		}
	}

	return seedCities(db)
}

// seedCities loads the reference city/area data on first boot.
func seedCities(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.City{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := map[string][]string{
		"Karachi":    {"Gulshan-e-Iqbal", "Clifton", "North Nazimabad", "Korangi"},
		"Lahore":     {"Johar Town", "Gulberg", "DHA", "Model Town"},
		"Islamabad":  {"F-7", "G-11", "Blue Area"},
		"Rawalpindi": {"Saddar", "Bahria Town", "Chaklala"},
	}

	for name, areas := range seed {
		city := models.City{Name: name}
		if err := db.Create(&city).Error; err != nil {
			return err
		}
		for _, area := range areas {
			if err := db.Create(&models.Area{CityID: city.ID, Name: area}).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
