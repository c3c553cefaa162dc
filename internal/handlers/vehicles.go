package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterVehicle accepts a multipart form with vehicle details, required
// registration documents and optional photos. New vehicles start pending
// admin verification.
func RegisterVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		vehicleType := c.PostForm("type")
		if !models.IsValidVehicleType(vehicleType) {
			c.JSON(400, gin.H{"error": "Invalid vehicle type. Must be Car, Bike or Van"})
			return
		}

		make_ := c.PostForm("make")
		model := c.PostForm("model")
		plateNumber := strings.ToUpper(strings.TrimSpace(c.PostForm("plateNumber")))
		if make_ == "" || model == "" || plateNumber == "" {
			c.JSON(400, gin.H{"error": "Make, model and plate number are required"})
			return
		}

		year, err := strconv.Atoi(c.PostForm("year"))
		if err != nil || year < 1990 || year > time.Now().Year()+1 {
			c.JSON(400, gin.H{"error": fmt.Sprintf("Year must be between 1990 and %d", time.Now().Year()+1)})
			return
		}

		capacity, err := strconv.Atoi(c.PostForm("capacity"))
		if err != nil || capacity < 1 || capacity > 20 {
			c.JSON(400, gin.H{"error": "Capacity must be between 1 and 20"})
			return
		}

		cityId, err := strconv.ParseUint(c.PostForm("cityId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Valid city is required"})
			return
		}
		var city models.City
		if result := db.First(&city, uint(cityId)); result.Error != nil {
			c.JSON(400, gin.H{"error": "Valid city is required"})
			return
		}

		var areaIDs models.UintList
		for _, raw := range c.PostFormArray("areaIds") {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid area id"})
				return
			}
			var count int64
			db.Model(&models.Area{}).Where("id = ? AND city_id = ?", uint(id), uint(cityId)).Count(&count)
			if count == 0 {
				c.JSON(400, gin.H{"error": "Area does not belong to the selected city"})
				return
			}
			areaIDs = append(areaIDs, uint(id))
		}

		var count int64
		db.Model(&models.Vehicle{}).Where("plate_number = ?", plateNumber).Count(&count)
		if count > 0 {
			c.JSON(409, gin.H{"error": "A vehicle with this plate number is already registered"})
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid multipart form"})
			return
		}

		docFiles := form.File["docs"]
		if len(docFiles) == 0 {
			c.JSON(400, gin.H{"error": "At least one registration document is required"})
			return
		}

		var docs models.StringList
		for _, file := range docFiles {
			path, err := services.UploadFile(file, "vehicles/docs", services.DocContentTypes)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			docs = append(docs, path)
		}

		photoFiles := form.File["photos"]
		if len(photoFiles) > 5 {
			c.JSON(400, gin.H{"error": "A maximum of 5 photos is allowed"})
			return
		}

		var photos models.StringList
		for _, file := range photoFiles {
			path, err := services.UploadFile(file, "vehicles/photos", services.PhotoContentTypes)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			photos = append(photos, path)
		}

		vehicle := models.Vehicle{
			UserID:        userId,
			Type:          vehicleType,
			Make:          make_,
			ModelName:     model,
			Year:          year,
			PlateNumber:   plateNumber,
			Color:         c.PostForm("color"),
			Capacity:      capacity,
			CityID:        uint(cityId),
			AreaIDs:       areaIDs,
			Docs:          docs,
			VehiclePhotos: photos,
			Status:        models.VehicleStatusPending,
		}

		if result := db.Create(&vehicle); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to register vehicle"})
			return
		}

		services.LogActivity(db, userId, "vehicle_registered",
			fmt.Sprintf("Vehicle ID: %d, Plate: %s", vehicle.ID, plateNumber), c.ClientIP())

		c.JSON(201, gin.H{
			"message": "Vehicle registered successfully. It will be reviewed by our team.",
			"vehicle": vehicle,
		})
	}
}

// MyVehicles lists the authenticated owner's vehicles.
func MyVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		var vehicles []models.Vehicle
		if err := db.Preload("City").Where("user_id = ?", userId).
			Order("created_at DESC").Find(&vehicles).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch vehicles"})
			return
		}

		c.JSON(200, gin.H{"vehicles": vehicles})
	}
}

// GetVehicle returns a vehicle. Plate number and documents are only
// visible to the vehicle's owner and admins.
func GetVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		role := c.GetString("role")

		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid vehicle ID"})
			return
		}

		var vehicle models.Vehicle
		if result := db.Preload("City").Preload("Owner").
			First(&vehicle, uint(vehicleId)); result.Error != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}

		if vehicle.UserID != userId && role != string(models.RoleAdmin) {
			vehicle.PlateNumber = ""
			vehicle.Docs = nil
		}

		c.JSON(200, gin.H{"vehicle": vehicle})
	}
}

type UpdateVehicleInput struct {
	Color    string `json:"color"`
	Capacity int    `json:"capacity"`
	CityID   uint   `json:"cityId"`
	AreaIDs  []uint `json:"areaIds"`
}

// UpdateVehicle lets the owner change mutable fields. Identity fields
// (type, make, model, plate) are fixed after registration.
func UpdateVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid vehicle ID"})
			return
		}

		var vehicle models.Vehicle
		if result := db.First(&vehicle, uint(vehicleId)); result.Error != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}
		if vehicle.UserID != userId {
			c.JSON(403, gin.H{"error": "You can only update your own vehicles"})
			return
		}

		var input UpdateVehicleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if input.Color != "" {
			updates["color"] = input.Color
		}
		if input.Capacity != 0 {
			if input.Capacity < 1 || input.Capacity > 20 {
				c.JSON(400, gin.H{"error": "Capacity must be between 1 and 20"})
				return
			}
			updates["capacity"] = input.Capacity
		}
		cityID := vehicle.CityID
		if input.CityID != 0 {
			var count int64
			db.Model(&models.City{}).Where("id = ?", input.CityID).Count(&count)
			if count == 0 {
				c.JSON(400, gin.H{"error": "Valid city is required"})
				return
			}
			updates["city_id"] = input.CityID
			cityID = input.CityID
		}
		if input.AreaIDs != nil {
			for _, id := range input.AreaIDs {
				var count int64
				db.Model(&models.Area{}).Where("id = ? AND city_id = ?", id, cityID).Count(&count)
				if count == 0 {
					c.JSON(400, gin.H{"error": "Area does not belong to the selected city"})
					return
				}
			}
			updates["area_ids"] = models.UintList(input.AreaIDs)
		}

		if len(updates) == 0 {
			c.JSON(400, gin.H{"error": "Nothing to update"})
			return
		}

		if err := db.Model(&vehicle).Updates(updates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update vehicle"})
			return
		}

		c.JSON(200, gin.H{"message": "Vehicle updated successfully", "vehicle": vehicle})
	}
}

// DeleteVehicle removes a vehicle that has no active trips.
func DeleteVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)

		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid vehicle ID"})
			return
		}

		var vehicle models.Vehicle
		if result := db.First(&vehicle, uint(vehicleId)); result.Error != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}
		if vehicle.UserID != userId {
			c.JSON(403, gin.H{"error": "You can only delete your own vehicles"})
			return
		}

		var activeTrips int64
		db.Model(&models.Trip{}).
			Where("vehicle_id = ? AND status = ? AND depart_datetime > ?",
				vehicle.ID, models.TripStatusActive, time.Now()).
			Count(&activeTrips)
		if activeTrips > 0 {
			c.JSON(409, gin.H{"error": "Cannot delete a vehicle with active trips"})
			return
		}

		if err := db.Delete(&vehicle).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete vehicle"})
			return
		}

		// Best-effort cleanup of the stored documents and photos.
		for _, path := range append(vehicle.Docs, vehicle.VehiclePhotos...) {
			if err := services.DeleteFile(path); err != nil {
				log.Printf("Failed to delete stored file %s: %v", path, err)
			}
		}

		services.LogActivity(db, userId, "vehicle_deleted",
			fmt.Sprintf("Vehicle ID: %d", vehicle.ID), c.ClientIP())

		c.JSON(200, gin.H{"message": "Vehicle deleted successfully"})
	}
}

type VerifyVehicleInput struct {
	Status string `json:"status" binding:"required,oneof=verified rejected"`
	Reason string `json:"reason"`
}

// VerifyVehicle is the admin decision on a pending vehicle. The owner is
// notified either way.
func VerifyVehicle(db *gorm.DB, notifier services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminId := c.MustGet("userId").(uint)

		vehicleId, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid vehicle ID"})
			return
		}

		var input VerifyVehicleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var vehicle models.Vehicle
		if result := db.First(&vehicle, uint(vehicleId)); result.Error != nil {
			c.JSON(404, gin.H{"error": "Vehicle not found"})
			return
		}

		if vehicle.Status != models.VehicleStatusPending {
			c.JSON(409, gin.H{"error": "Vehicle has already been reviewed"})
			return
		}

		newStatus := models.VehicleStatus(input.Status)
		if err := db.Model(&vehicle).Update("status", newStatus).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update vehicle status"})
			return
		}

		if notifier != nil {
			if newStatus == models.VehicleStatusVerified {
				notifier.Notify(vehicle.UserID, models.NotificationVehicleVerified,
					"Vehicle Verified",
					fmt.Sprintf("Your %s %s has been verified. You can now post trips.", vehicle.Make, vehicle.ModelName), "")
			} else {
				reason := input.Reason
				if reason == "" {
					reason = "Documents could not be verified"
				}
				notifier.Notify(vehicle.UserID, models.NotificationVehicleRejected,
					"Vehicle Rejected",
					fmt.Sprintf("Your %s %s was rejected: %s", vehicle.Make, vehicle.ModelName, reason), "")
			}
		}

		services.LogActivity(db, adminId, "vehicle_"+input.Status,
			fmt.Sprintf("Vehicle ID: %d", vehicle.ID), c.ClientIP())

		c.JSON(200, gin.H{"message": "Vehicle " + input.Status, "vehicle": vehicle})
	}
}

// PendingVehicles lists vehicles awaiting admin review.
func PendingVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicles []models.Vehicle
		if err := db.Preload("Owner").Preload("City").
			Where("status = ?", models.VehicleStatusPending).
			Order("created_at ASC").Find(&vehicles).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch vehicles"})
			return
		}

		c.JSON(200, gin.H{"vehicles": vehicles})
	}
}
