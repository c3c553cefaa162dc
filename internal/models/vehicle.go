package models

import (
	"gorm.io/gorm"
)

type VehicleStatus string

const (
	VehicleStatusPending  VehicleStatus = "pending"
	VehicleStatusVerified VehicleStatus = "verified"
	VehicleStatusRejected VehicleStatus = "rejected"
)

// VehicleTypes is the closed set of accepted vehicle types.
var VehicleTypes = []string{"Car", "Bike", "Van"}

func IsValidVehicleType(t string) bool {
	for _, v := range VehicleTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Vehicle struct {
	gorm.Model
	UserID        uint          `json:"userId" gorm:"column:user_id;not null;index"`
	Owner         User          `json:"owner" gorm:"foreignKey:UserID"`
	Type          string        `json:"type" gorm:"column:type;not null"`
	Make          string        `json:"make" gorm:"column:make;not null"`
	ModelName     string        `json:"model" gorm:"column:model;not null"`
	Year          int           `json:"year" gorm:"column:year;not null"`
	PlateNumber   string        `json:"plateNumber,omitempty" gorm:"column:plate_number;unique;not null"`
	Color         string        `json:"color" gorm:"column:color"`
	Capacity      int           `json:"capacity" gorm:"column:capacity;not null"`
	CityID        uint          `json:"cityId" gorm:"column:city_id;not null"`
	City          City          `json:"city"`
	AreaIDs       UintList      `json:"areaIds" gorm:"column:area_ids;type:text"`
	Docs          StringList    `json:"docs,omitempty" gorm:"column:docs_json;type:text"`
	VehiclePhotos StringList    `json:"vehiclePhotos" gorm:"column:vehicle_photos;type:text"`
	Status        VehicleStatus `json:"status" gorm:"column:status;not null;default:'pending'"`
}

// TableName specifies the table name
func (Vehicle) TableName() string {
	return "vehicles"
}
