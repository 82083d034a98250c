package services

import (
	"context"
	"time"

	"cybersite/internal/models"

	"gorm.io/gorm"
)

func AppointmentListSpec() ListSpec {
	return ListSpec{
		Collection:    "appointments",
		SearchColumns: []string{"title", "client_name", "client_email", "client_company"},
		Filters:       map[string]string{"status": "status", "type": "type"},
		BoolFilters:   map[string]string{"isVirtual": "is_virtual"},
		Order:         []string{"scheduled_at DESC"},
		StatusColumn:  "status",
	}
}

// NewAppointmentService stamps confirmedAt/completedAt/cancelledAt whenever
// the status changes.
func NewAppointmentService(db *gorm.DB) *BaseServiceImpl[models.Appointment] {
	return NewBaseService(db, models.Appointment{}, AppointmentListSpec(), Hooks[models.Appointment]{
		BeforeCreate: func(_ context.Context, _ *gorm.DB, a *models.Appointment) error {
			a.StampStatus("", time.Now())
			return nil
		},
		BeforeUpdate: func(_ context.Context, _ *gorm.DB, current, next *models.Appointment) error {
			next.ConfirmedAt, next.CompletedAt, next.CancelledAt = current.ConfirmedAt, current.CompletedAt, current.CancelledAt
			next.StampStatus(current.Status, time.Now())
			return nil
		},
	})
}

func CaseStudyListSpec() ListSpec {
	return ListSpec{
		Collection:    "caseStudies",
		SearchColumns: []string{"title", "client", "industry"},
		Filters:       map[string]string{"status": "status", "industry": "industry"},
		BoolFilters:   map[string]string{"featured": "featured"},
		Order:         []string{"display_order ASC", "created_at DESC"},
		StatusColumn:  "status",
	}
}

func NewCaseStudyService(db *gorm.DB) *BaseServiceImpl[models.CaseStudy] {
	return NewBaseService(db, models.CaseStudy{}, CaseStudyListSpec(), Hooks[models.CaseStudy]{
		BeforeUpdate: func(_ context.Context, _ *gorm.DB, current, next *models.CaseStudy) error {
			if current.PublishedAt != nil {
				next.PublishedAt = current.PublishedAt
			}
			return nil
		},
	})
}

func EventListSpec() ListSpec {
	return ListSpec{
		Collection:    "events",
		SearchColumns: []string{"title", "location"},
		Filters:       map[string]string{"status": "status", "type": "type"},
		BoolFilters:   map[string]string{"featured": "featured", "isVirtual": "is_virtual"},
		Order:         []string{"starts_at DESC"},
		StatusColumn:  "status",
	}
}

func NewEventService(db *gorm.DB) *BaseServiceImpl[models.Event] {
	return NewBaseService(db, models.Event{}, EventListSpec())
}

func TestimonialListSpec() ListSpec {
	return ListSpec{
		Collection:    "testimonials",
		SearchColumns: []string{"author_name", "company", "quote"},
		Filters:       map[string]string{"status": "status", "source": "source"},
		BoolFilters:   map[string]string{"featured": "featured", "verified": "verified"},
		Order:         []string{"created_at DESC"},
		StatusColumn:  "status",
	}
}

func SubscriberListSpec() ListSpec {
	return ListSpec{
		Collection:    "subscribers",
		SearchColumns: []string{"email", "name"},
		Filters:       map[string]string{"status": "status"},
		Order:         []string{"created_at DESC"},
		StatusColumn:  "status",
	}
}

func ServiceListSpec() ListSpec {
	return ListSpec{
		Collection:    "services",
		SearchColumns: []string{"title", "short_description"},
		BoolFilters:   map[string]string{"isActive": "is_active"},
		Order:         []string{"display_order ASC", "title ASC"},
	}
}

func ResourceListSpec() ListSpec {
	return ListSpec{
		Collection:    "resources",
		SearchColumns: []string{"title", "category"},
		Filters:       map[string]string{"status": "status", "type": "type", "category": "category"},
		BoolFilters:   map[string]string{"featured": "featured"},
		Order:         []string{"created_at DESC"},
		StatusColumn:  "status",
		Counters:      []string{"download_count"},
	}
}

func CampaignListSpec() ListSpec {
	return ListSpec{
		Collection:    "campaigns",
		SearchColumns: []string{"name", "subject"},
		Filters:       map[string]string{"status": "status", "type": "type"},
		BoolFilters:   map[string]string{"isActive": "is_active"},
		Order:         []string{"created_at DESC"},
		StatusColumn:  "status",
		Counters:      []string{"open_count", "click_count", "bounce_count"},
	}
}

func UserListSpec() ListSpec {
	return ListSpec{
		Collection:    "users",
		SearchColumns: []string{"email", "first_name", "last_name"},
		Filters:       map[string]string{"role": "role"},
		Order:         []string{"created_at ASC"},
		StatusColumn:  "role",
	}
}
