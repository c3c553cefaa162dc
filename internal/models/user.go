package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleOwner UserRole = "owner"
	RoleRider UserRole = "rider"
	RoleAdmin UserRole = "admin"
)

type User struct {
	gorm.Model
	Name              string     `json:"name" gorm:"column:name;not null"`
	Email             string     `json:"email" gorm:"column:email;unique;not null"`
	Phone             string     `json:"phone" gorm:"column:phone;unique;not null"`
	PasswordHash      string     `json:"-" gorm:"column:password_hash;not null"`
	Role              UserRole   `json:"role" gorm:"column:role;not null"`
	IsVerified        bool       `json:"isVerified" gorm:"column:is_verified;default:false"`
	VerificationToken string     `json:"-" gorm:"column:verification_token"`
	ProfilePhoto      string     `json:"profilePhoto" gorm:"column:profile_photo"`
	LastLoginAt       *time.Time `json:"lastLoginAt" gorm:"column:last_login_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
