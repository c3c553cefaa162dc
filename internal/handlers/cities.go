package handlers

import (
	"strconv"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListCities returns all supported cities.
func ListCities(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cities []models.City
		if err := db.Order("name ASC").Find(&cities).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch cities"})
			return
		}

		c.JSON(200, gin.H{"cities": cities})
	}
}

// ListAreas returns the areas of one city.
func ListAreas(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cityId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid city ID"})
			return
		}

		var count int64
		db.Model(&models.City{}).Where("id = ?", uint(cityId)).Count(&count)
		if count == 0 {
			c.JSON(404, gin.H{"error": "City not found"})
			return
		}

		var areas []models.Area
		if err := db.Where("city_id = ?", uint(cityId)).
			Order("name ASC").Find(&areas).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch areas"})
			return
		}

		c.JSON(200, gin.H{"areas": areas})
	}
}
