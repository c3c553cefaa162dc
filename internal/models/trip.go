package models

import (
	"time"

	"gorm.io/gorm"
)

type TripStatus string

const (
	TripStatusActive    TripStatus = "active"
	TripStatusCancelled TripStatus = "cancelled"
)

type Trip struct {
	gorm.Model
	VehicleID           uint       `json:"vehicleId" gorm:"column:vehicle_id;not null;index"`
	Vehicle             Vehicle    `json:"vehicle"`
	UserID              uint       `json:"userId" gorm:"column:user_id;not null;index"`
	Owner               User       `json:"owner" gorm:"foreignKey:UserID"`
	DepartureCityID     uint       `json:"departureCityId" gorm:"column:departure_city_id;not null"`
	DepartureCity       City       `json:"departureCity" gorm:"foreignKey:DepartureCityID"`
	DepartureAreaID     *uint      `json:"departureAreaId" gorm:"column:departure_area_id"`
	DepartureArea       *Area      `json:"departureArea,omitempty" gorm:"foreignKey:DepartureAreaID"`
	ArrivalCityID       uint       `json:"arrivalCityId" gorm:"column:arrival_city_id;not null"`
	ArrivalCity         City       `json:"arrivalCity" gorm:"foreignKey:ArrivalCityID"`
	ArrivalAreaID       *uint      `json:"arrivalAreaId" gorm:"column:arrival_area_id"`
	ArrivalArea         *Area      `json:"arrivalArea,omitempty" gorm:"foreignKey:ArrivalAreaID"`
	DepartDatetime      time.Time  `json:"departDatetime" gorm:"column:depart_datetime;not null;index"`
	SeatsTotal          int        `json:"seatsTotal" gorm:"column:seats_total;not null"`
	SeatsLeft           int        `json:"seatsLeft" gorm:"column:seats_left;not null"`
	PricePerSeat        float64    `json:"pricePerSeat" gorm:"column:price_per_seat;not null"`
	LuggageAllowance    string     `json:"luggageAllowance" gorm:"column:luggage_allowance"`
	Notes               string     `json:"notes" gorm:"column:notes"`
	AllowPartialBooking bool       `json:"allowPartialBooking" gorm:"column:allow_partial_booking;default:true"`
	Status              TripStatus `json:"status" gorm:"column:status;not null;default:'active'"`
}

// TableName specifies the table name
func (Trip) TableName() string {
	return "trips"
}
