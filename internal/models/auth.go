package models

import (
	"time"
)

type User struct {
	Base
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"not null" json:"-"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Role            UserRole   `gorm:"not null;default:'EDITOR'" json:"role"`
	ProfileImageURL *string    `json:"profileImageUrl"`
	ProfileImageKey *string    `json:"-"`
	LastLoginAt     *time.Time `json:"lastLoginAt"`
}

type AuthTransaction struct {
	Base
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	User      *User     `json:"user,omitempty"`
	Token     string    `gorm:"not null" json:"token"`
	Refresh   string    `gorm:"not null" json:"refresh"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
}
