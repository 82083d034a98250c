package services

import (
	"context"
	"fmt"

	"cybersite/internal/events"
	"cybersite/internal/metrics"
	"cybersite/internal/models"

	"gorm.io/gorm"
)

type ResourceService struct {
	*BaseServiceImpl[models.Resource]
	db *gorm.DB
}

func NewResourceService(db *gorm.DB) *ResourceService {
	return &ResourceService{
		BaseServiceImpl: NewBaseService(db, models.Resource{}, ResourceListSpec(), Hooks[models.Resource]{
			BeforeUpdate: func(_ context.Context, _ *gorm.DB, current, next *models.Resource) error {
				next.DownloadCount = current.DownloadCount
				return nil
			},
			BeforeDelete: func(_ context.Context, tx *gorm.DB, current *models.Resource) error {
				return tx.Where("resource_id = ?", current.ID).Delete(&models.ResourceDownload{}).Error
			},
		}),
		db: db,
	}
}

// RecordDownload stores a download of a published resource and bumps its
// counter in the same transaction.
func (s *ResourceService) RecordDownload(ctx context.Context, resourceID string, download *models.ResourceDownload) (*models.Resource, error) {
	var resource models.Resource
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&resource, "id = ?", resourceID).Error; err != nil {
			return err
		}
		if resource.Status != models.PublishStatusPublished {
			return gorm.ErrRecordNotFound
		}

		download.ID = ""
		download.ResourceID = resource.ID
		if err := tx.Create(download).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Resource{}).Where("id = ?", resource.ID).
			UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
			return err
		}
		resource.DownloadCount++
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	metrics.ResourceDownloads.Inc()
	events.Emit(events.ResourceDownloaded, download)
	return &resource, nil
}

// ListDownloads pages through the downloads of one resource, newest first.
func (s *ResourceService) ListDownloads(ctx context.Context, resourceID string, params ListParams) (*ListResult[models.ResourceDownload], error) {
	if _, err := s.Get(ctx, resourceID); err != nil {
		return nil, err
	}
	downloads := NewBaseService(s.db, models.ResourceDownload{}, ListSpec{
		Collection:    "downloads",
		SearchColumns: []string{"email", "name", "company"},
		Order:         []string{"created_at DESC"},
	})
	if params.Filters == nil {
		params.Filters = map[string]string{}
	}
	result, err := downloads.listWhere(ctx, params, "resource_id = ?", resourceID)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	return result, nil
}
