package services

import (
	"context"
	"fmt"
	"time"

	"cybersite/internal/events"
	"cybersite/internal/models"

	"gorm.io/gorm"
)

type TestimonialService struct {
	*BaseServiceImpl[models.Testimonial]
	db *gorm.DB
}

func NewTestimonialService(db *gorm.DB) *TestimonialService {
	return &TestimonialService{
		BaseServiceImpl: NewBaseService(db, models.Testimonial{}, TestimonialListSpec()),
		db:              db,
	}
}

// Submit stores a testimonial sent from the public site. Moderation fields
// are always reset.
func (s *TestimonialService) Submit(ctx context.Context, t *models.Testimonial) error {
	t.ID = ""
	t.Status = models.TestimonialStatusPending
	t.Featured = false
	t.Verified = false
	t.VerifiedAt = nil
	if t.Source == "" {
		t.Source = models.TestimonialSourceWebsite
	}
	return s.Create(ctx, t)
}

// BulkAction applies one moderation action to exactly the given ids in a
// single transaction and returns the number of rows changed. Unknown ids
// fail the whole batch.
func (s *TestimonialService) BulkAction(ctx context.Context, ids []string, action models.TestimonialAction) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: ids are required", ErrInvalidInput)
	}
	updates, ok := action.Updates(time.Now())
	if !ok {
		return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}
	unique := uniqueStrings(ids)

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&models.Testimonial{}).Where("id IN ?", unique).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(unique)) {
			return fmt.Errorf("%w: %d of %d testimonials not found", ErrNotFound, int64(len(unique))-found, len(unique))
		}

		var res *gorm.DB
		if updates == nil {
			res = tx.Where("id IN ?", unique).Delete(&models.Testimonial{})
		} else {
			res = tx.Model(&models.Testimonial{}).Where("id IN ?", unique).Updates(updates)
		}
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}

	events.Emit("testimonials.bulk_"+string(action), unique)
	return affected, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
