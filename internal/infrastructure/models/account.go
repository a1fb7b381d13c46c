package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Account struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name            string     `gorm:"type:varchar(100);not null"`
	Email           string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone           string     `gorm:"type:varchar(20);uniqueIndex;not null"`
	UserType        string     `gorm:"type:varchar(20);not null"`
	PhoneVerified   bool       `gorm:"not null;default:false"`
	Status          string     `gorm:"type:varchar(30);not null;default:'pending_verification'"`
	PhoneVerifiedAt *time.Time `gorm:"type:timestamp"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Account) TableName() string {
	return "accounts"
}
