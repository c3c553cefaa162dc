package models

import (
	"gorm.io/gorm"
)

// ActivityLog is an append-only audit trail of user actions.
type ActivityLog struct {
	gorm.Model
	UserID    uint   `json:"userId" gorm:"column:user_id;not null;index"`
	Action    string `json:"action" gorm:"column:action;not null"`
	Details   string `json:"details" gorm:"column:details"`
	IPAddress string `json:"ipAddress" gorm:"column:ip_address"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}
