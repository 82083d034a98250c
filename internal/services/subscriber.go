package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cybersite/internal/events"
	"cybersite/internal/models"
	"cybersite/internal/utils/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriberService struct {
	*BaseServiceImpl[models.Subscriber]
	db         *gorm.DB
	dispatcher Dispatcher
	logger     *logger.Logger
}

func NewSubscriberService(db *gorm.DB, dispatcher Dispatcher) *SubscriberService {
	return &SubscriberService{
		BaseServiceImpl: NewBaseService(db, models.Subscriber{}, SubscriberListSpec()),
		db:              db,
		dispatcher:      dispatcher,
		logger:          logger.New("NEWSLETTER"),
	}
}

// Subscribe registers an address as pending and queues the confirmation
// email. Confirmed subscribers are returned unchanged; unsubscribed ones
// start over with a new token.
func (s *SubscriberService) Subscribe(ctx context.Context, email string, name *string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	var sub models.Subscriber
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&sub).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = models.Subscriber{Email: email, Name: name, Status: models.SubscriberStatusPending}
			sub.Normalize()
			return tx.Create(&sub).Error
		case err != nil:
			return err
		}

		if sub.Status == models.SubscriberStatusConfirmed {
			return nil
		}
		if name != nil {
			sub.Name = name
		}
		if sub.Status == models.SubscriberStatusUnsubscribed {
			sub.Token = uuid.NewString()
			sub.UnsubscribedAt = nil
		}
		sub.Status = models.SubscriberStatusPending
		sub.Normalize()
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	if sub.Status == models.SubscriberStatusPending {
		if err := s.dispatcher.EnqueueConfirmationEmail(ctx, sub.ID); err != nil {
			s.logger.Warn("Failed to queue confirmation for %s: %v", sub.Email, err)
		}
	}
	return &sub, nil
}

// Confirm activates the subscription owning token. Confirming twice is a no-op.
func (s *SubscriberService) Confirm(ctx context.Context, token string) (*models.Subscriber, error) {
	sub, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.SubscriberStatusConfirmed {
		return sub, nil
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(sub).Updates(map[string]interface{}{
		"status":          models.SubscriberStatusConfirmed,
		"confirmed_at":    now,
		"unsubscribed_at": nil,
	}).Error; err != nil {
		return nil, translate(err)
	}
	sub.Status = models.SubscriberStatusConfirmed
	sub.ConfirmedAt = &now
	sub.UnsubscribedAt = nil

	events.Emit(events.SubscriberConfirmed, sub)
	return sub, nil
}

// Unsubscribe stops all campaign email to the owner of token.
func (s *SubscriberService) Unsubscribe(ctx context.Context, token string) (*models.Subscriber, error) {
	sub, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.SubscriberStatusUnsubscribed {
		return sub, nil
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(sub).Updates(map[string]interface{}{
		"status":          models.SubscriberStatusUnsubscribed,
		"unsubscribed_at": now,
	}).Error; err != nil {
		return nil, translate(err)
	}
	sub.Status = models.SubscriberStatusUnsubscribed
	sub.UnsubscribedAt = &now

	events.Emit(events.SubscriberUnsubscribed, sub)
	return sub, nil
}

func (s *SubscriberService) byToken(ctx context.Context, token string) (*models.Subscriber, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotFound
	}
	return s.GetBy(ctx, "token", token)
}
