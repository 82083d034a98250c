package models

import (
	"errors"
	"fmt"

	"cybersite/internal/config"
	console "cybersite/internal/utils/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var log = console.New("SEEDER")

// CreateSuperAdminFromEnv creates the first super admin when none exists.
func CreateSuperAdminFromEnv(db *gorm.DB, cfg *config.Config) error {
	role := UserRoleSuperAdmin

	var count int64
	if err := db.Model(&User{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count super admins: %w", err)
	}
	log.Info("Super admin count: %d", count)
	if count > 0 {
		return nil
	}

	if cfg.SuperAdmin.Email == "" {
		return fmt.Errorf("SUPERADMIN_EMAIL not set")
	}
	if cfg.SuperAdmin.Password == "" {
		return fmt.Errorf("SUPERADMIN_PASSWORD not set")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		FirstName: cfg.SuperAdmin.FirstName,
		LastName:  cfg.SuperAdmin.LastName,
		Email:     cfg.SuperAdmin.Email,
		Role:      role,
		Password:  string(hashedPassword),
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create superadmin user: %w", err)
	}

	log.Success("Created super admin %s", user.Email)
	return nil
}

// SeedSettings inserts the settings row if it does not exist yet.
func SeedSettings(db *gorm.DB, cfg *config.Config) error {
	var existing Settings
	err := db.First(&existing, "id = ?", SettingsID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	settings := Settings{
		CompanyName: cfg.Site.Name,
		Email:       cfg.Mail.From,
	}
	settings.Normalize()
	if err := db.Create(&settings).Error; err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}
	return nil
}
