package models

import (
	"gorm.io/gorm"
)

// GetUserByEmail retrieves a user from the database by email
func GetUserByEmail(email string, db *gorm.DB) (*User, error) {
	user := &User{}
	if err := db.Where("email = ?", email).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByID(id string, db *gorm.DB) (*User, error) {
	user := &User{}
	if err := db.Where("id = ?", id).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetSettings loads the settings row, returning an empty record if it was never seeded.
func GetSettings(db *gorm.DB) (*Settings, error) {
	settings := &Settings{}
	err := db.Where("id = ?", SettingsID).Limit(1).Find(settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}
