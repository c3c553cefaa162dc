package models

import (
	"gorm.io/gorm"
)

type City struct {
	gorm.Model
	Name string `json:"name" gorm:"column:name;unique;not null"`
}

func (City) TableName() string {
	return "cities"
}

type Area struct {
	gorm.Model
	CityID uint   `json:"cityId" gorm:"column:city_id;not null;index"`
	Name   string `json:"name" gorm:"column:name;not null"`
}

func (Area) TableName() string {
	return "areas"
}
