package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/goswift/goswift-backend/internal/models"
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/goswift/goswift-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SignupInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Role            string `json:"role" binding:"required,oneof=owner rider"`
}

func Signup(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Password != input.ConfirmPassword {
			c.JSON(400, gin.H{"error": "Passwords do not match"})
			return
		}

		if !utils.ValidatePhone(input.Phone) {
			c.JSON(400, gin.H{"error": "Invalid phone number. Use format: 03001234567"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))

		var count int64
		db.Model(&models.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			c.JSON(409, gin.H{"error": "Email already registered"})
			return
		}
		db.Model(&models.User{}).Where("phone = ?", input.Phone).Count(&count)
		if count > 0 {
			c.JSON(409, gin.H{"error": "Phone number already registered"})
			return
		}

		verificationToken, err := utils.GenerateSecureToken(32)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate verification token"})
			return
		}

		user := models.User{
			Name:              strings.TrimSpace(input.Name),
			Email:             email,
			Phone:             input.Phone,
			Role:              models.UserRole(input.Role),
			IsVerified:        true, // accounts are auto-verified; the token allows re-verification flows
			VerificationToken: verificationToken,
		}
		if err := user.SetPassword(input.Password); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if result := db.Create(&user); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create account"})
			return
		}

		// Best-effort; signup succeeds even if the mail bounces.
		if err := utils.SendVerificationEmail(user.Email, verificationToken); err != nil {
			log.Printf("Failed to send verification email to %s: %v", user.Email, err)
		}

		services.LogActivity(db, user.ID, "user_registered", "Role: "+input.Role, c.ClientIP())

		c.JSON(201, gin.H{
			"message": "Account created successfully! You can now login.",
			"userId":  user.ID,
		})
	}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates by email or phone and returns a JWT.
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("email = ? OR phone = ?", strings.ToLower(input.Email), input.Email).
			First(&user); result.Error != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials. Please check your email/phone and password."})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials. Please check your email/phone and password."})
			return
		}

		now := time.Now()
		db.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", now)

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		services.LogActivity(db, user.ID, "user_login", "", c.ClientIP())

		c.JSON(200, gin.H{
			"message": "Login successful",
			"token":   token,
			"user": gin.H{
				"id":           user.ID,
				"name":         user.Name,
				"email":        user.Email,
				"phone":        user.Phone,
				"role":         user.Role,
				"isVerified":   user.IsVerified,
				"profilePhoto": user.ProfilePhoto,
			},
		})
	}
}

// VerifyEmail marks the account matching the token as verified.
func VerifyEmail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(400, gin.H{"error": "Verification token is required"})
			return
		}

		var user models.User
		if result := db.Where("verification_token = ? AND is_verified = ?", token, false).
			First(&user); result.Error != nil {
			c.JSON(400, gin.H{"error": "Invalid or expired verification token"})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", user.ID).
			Updates(map[string]interface{}{"is_verified": true, "verification_token": ""}).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to verify account"})
			return
		}

		services.LogActivity(db, user.ID, "email_verified", "", c.ClientIP())

		c.JSON(200, gin.H{"message": "Email verified successfully"})
	}
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a reset token. The response is identical whether
// or not the email exists, to prevent enumeration.
func ForgotPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ForgotPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("email = ?", strings.ToLower(input.Email)).First(&user); result.Error == nil {
			resetToken, err := utils.GenerateSecureToken(32)
			if err == nil {
				db.Model(&models.User{}).Where("id = ?", user.ID).
					Update("verification_token", resetToken)
				if err := utils.SendPasswordResetEmail(user.Email, user.Name, resetToken); err != nil {
					log.Printf("Failed to send reset email to %s: %v", user.Email, err)
				}
			}
		}

		c.JSON(200, gin.H{"message": "If the email exists, a password reset link has been sent"})
	}
}

type ResetPasswordInput struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ResetPassword sets a new password for the account matching the token.
func ResetPassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ResetPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Password != input.ConfirmPassword {
			c.JSON(400, gin.H{"error": "Passwords do not match"})
			return
		}

		var user models.User
		if result := db.Where("verification_token = ? AND verification_token != ''", input.Token).
			First(&user); result.Error != nil {
			c.JSON(400, gin.H{"error": "Invalid or expired reset token"})
			return
		}

		if err := user.SetPassword(input.Password); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"password_hash":      user.PasswordHash,
				"verification_token": "",
			}).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update password"})
			return
		}

		services.LogActivity(db, user.ID, "password_reset", "", c.ClientIP())

		c.JSON(200, gin.H{"message": "Password reset successfully. You can now login with your new password."})
	}
}
