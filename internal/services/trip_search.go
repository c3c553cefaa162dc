package services

import (
	"fmt"
	"time"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/pkg/apperrors"
	"gorm.io/gorm"
)

const TripsPerPage = 20

// Trip search sort keys.
const (
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortSeats     = "seats"
	SortTimeLate  = "time_late"
)

var sortClauses = map[string]string{
	SortPriceLow:  "trips.price_per_seat ASC",
	SortPriceHigh: "trips.price_per_seat DESC",
	SortSeats:     "trips.seats_left DESC",
	SortTimeLate:  "trips.depart_datetime DESC",
}

// TripSearchParams is the structured predicate list for trip search: each
// set field contributes one parameterized AND clause.
type TripSearchParams struct {
	FromCityID  uint
	FromAreaID  uint
	ToCityID    uint
	ToAreaID    uint
	Date        string // YYYY-MM-DD
	MinSeats    int
	VehicleType string
	MaxPrice    float64
	Sort        string
	Page        int
}

// CacheKey identifies a result page for the redis cache.
func (p TripSearchParams) CacheKey() string {
	return fmt.Sprintf("%d:%d:%d:%d:%s:%d:%s:%g:%s:%d",
		p.FromCityID, p.FromAreaID, p.ToCityID, p.ToAreaID,
		p.Date, p.MinSeats, p.VehicleType, p.MaxPrice, p.Sort, p.page())
}

func (p TripSearchParams) page() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

func (p TripSearchParams) apply(db *gorm.DB) (*gorm.DB, error) {
	query := db.Model(&models.Trip{}).
		Joins("JOIN vehicles ON vehicles.id = trips.vehicle_id").
		Where("trips.status = ? AND trips.depart_datetime > ?", models.TripStatusActive, time.Now())

	if p.FromCityID != 0 {
		query = query.Where("trips.departure_city_id = ?", p.FromCityID)
	}
	if p.FromAreaID != 0 {
		query = query.Where("trips.departure_area_id = ?", p.FromAreaID)
	}
	if p.ToCityID != 0 {
		query = query.Where("trips.arrival_city_id = ?", p.ToCityID)
	}
	if p.ToAreaID != 0 {
		query = query.Where("trips.arrival_area_id = ?", p.ToAreaID)
	}
	if p.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", p.Date, time.Local)
		if err != nil {
			return nil, apperrors.InvalidArgument("Invalid date, expected YYYY-MM-DD")
		}
		query = query.Where("trips.depart_datetime >= ? AND trips.depart_datetime < ?",
			day, day.Add(24*time.Hour))
	}
	if p.MinSeats > 0 {
		query = query.Where("trips.seats_left >= ?", p.MinSeats)
	}
	if p.VehicleType != "" {
		query = query.Where("vehicles.type = ?", p.VehicleType)
	}
	if p.MaxPrice > 0 {
		query = query.Where("trips.price_per_seat <= ?", p.MaxPrice)
	}

	return query, nil
}

func (p TripSearchParams) order() string {
	if clause, ok := sortClauses[p.Sort]; ok {
		return clause
	}
	return "trips.depart_datetime ASC"
}

// TripSearchResult is one page of matching trips plus pagination totals.
type TripSearchResult struct {
	Trips      []models.Trip `json:"trips"`
	Page       int           `json:"page"`
	PerPage    int           `json:"perPage"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"totalPages"`
}

// SearchTrips runs a filtered, sorted, paginated query over active,
// future-dated trips.
func SearchTrips(db *gorm.DB, p TripSearchParams) (*TripSearchResult, error) {
	query, err := p.apply(db)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal("Failed to count trips", err)
	}

	page := p.page()
	var trips []models.Trip
	if err := query.
		Preload("Vehicle").
		Preload("Owner").
		Preload("DepartureCity").
		Preload("DepartureArea").
		Preload("ArrivalCity").
		Preload("ArrivalArea").
		Order(p.order()).
		Limit(TripsPerPage).
		Offset((page - 1) * TripsPerPage).
		Find(&trips).Error; err != nil {
		return nil, apperrors.Internal("Failed to fetch trips", err)
	}

	totalPages := (total + TripsPerPage - 1) / TripsPerPage
	return &TripSearchResult{
		Trips:      trips,
		Page:       page,
		PerPage:    TripsPerPage,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
