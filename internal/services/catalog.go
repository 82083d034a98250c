package services

import (
	"context"
	"fmt"

	"cybersite/internal/models"

	"gorm.io/gorm"
)

// ServiceCatalog manages the consultancy's service offerings.
type ServiceCatalog struct {
	*BaseServiceImpl[models.Service]
	db *gorm.DB
}

func NewServiceCatalog(db *gorm.DB) *ServiceCatalog {
	return &ServiceCatalog{
		BaseServiceImpl: NewBaseService(db, models.Service{}, ServiceListSpec()),
		db:              db,
	}
}

// Reorder sets each service's display order to its position in ids.
func (s *ServiceCatalog) Reorder(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids are required", ErrInvalidInput)
	}
	if len(uniqueStrings(ids)) != len(ids) {
		return fmt.Errorf("%w: ids must be unique", ErrInvalidInput)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			res := tx.Model(&models.Service{}).Where("id = ?", id).Update("display_order", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: service %s", ErrNotFound, id)
			}
		}
		return nil
	})
	return translate(err)
}
