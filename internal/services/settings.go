package services

import (
	"context"

	"cybersite/internal/events"
	"cybersite/internal/models"

	"gorm.io/gorm"
)

// SettingsService reads and edits the single site settings row in place.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the settings. Before the row is seeded an empty record is returned.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := models.GetSettings(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	settings.ID = models.SettingsID
	return settings, nil
}

// Update applies changes to the stored settings, creating the row if needed.
func (s *SettingsService) Update(ctx context.Context, apply func(*models.Settings) error) (*models.Settings, error) {
	var settings *models.Settings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := models.GetSettings(tx)
		if err != nil {
			return err
		}
		exists := current.ID != ""
		createdAt := current.CreatedAt
		if err := apply(current); err != nil {
			return err
		}
		current.ID = models.SettingsID
		current.CreatedAt = createdAt
		settings = current
		if !exists {
			return tx.Create(current).Error
		}
		return tx.Save(current).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	events.Emit("site_settings.updated", settings)
	return settings, nil
}
