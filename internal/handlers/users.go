package handlers

import (
	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/goswift/goswift-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetProfile returns the authenticated user's account.
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var user models.User
		if result := db.First(&user, userId); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{"user": user})
	}
}

type UpdateProfileInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UpdateProfile updates name and phone. Email and role are immutable.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if input.Name != "" {
			updates["name"] = input.Name
		}
		if input.Phone != "" {
			if !utils.ValidatePhone(input.Phone) {
				c.JSON(400, gin.H{"error": "Invalid phone number. Use format: 03001234567"})
				return
			}
			var count int64
			db.Model(&models.User{}).Where("phone = ? AND id != ?", input.Phone, userId).Count(&count)
			if count > 0 {
				c.JSON(409, gin.H{"error": "Phone number already registered"})
				return
			}
			updates["phone"] = input.Phone
		}

		if len(updates) == 0 {
			c.JSON(400, gin.H{"error": "Nothing to update"})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", userId).Updates(updates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		services.LogActivity(db, userId, "profile_updated", "", c.ClientIP())

		var user models.User
		db.First(&user, userId)
		c.JSON(200, gin.H{"message": "Profile updated successfully", "user": user})
	}
}

// UploadProfilePhoto stores a profile image and saves its URL.
func UploadProfilePhoto(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		file, err := c.FormFile("photo")
		if err != nil {
			c.JSON(400, gin.H{"error": "Photo file is required"})
			return
		}

		path, err := services.UploadFile(file, "profiles", services.PhotoContentTypes)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		url := services.FileURL(path)
		if err := db.Model(&models.User{}).Where("id = ?", userId).
			Update("profile_photo", url).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile photo"})
			return
		}

		c.JSON(200, gin.H{"message": "Profile photo updated", "profilePhoto": url})
	}
}
