package services

import (
	"context"
	"fmt"
	"time"

	"cybersite/internal/metrics"
	"cybersite/internal/models"
	"cybersite/internal/utils/logger"

	"gorm.io/gorm"
)

// Delivery renders and sends the emails queued by the campaign and
// newsletter services. It runs inside the task workers.
type Delivery struct {
	db       *gorm.DB
	mailer   Mailer
	renderer *EmailRenderer
	now      func() time.Time
	logger   *logger.Logger
}

func NewDelivery(db *gorm.DB, mailer Mailer, renderer *EmailRenderer) *Delivery {
	return &Delivery{
		db:       db,
		mailer:   mailer,
		renderer: renderer,
		now:      time.Now,
		logger:   logger.New("DELIVERY"),
	}
}

// DeliverCampaignEmail sends one campaign to one subscriber. It returns
// ErrDeliverySkipped when the email should not be retried: the campaign or
// subscriber is gone, the campaign was cancelled, or the subscriber left.
func (d *Delivery) DeliverCampaignEmail(ctx context.Context, campaignID, subscriberID string) error {
	var campaign models.Campaign
	if err := d.db.WithContext(ctx).First(&campaign, "id = ?", campaignID).Error; err != nil {
		if IsNotFound(translate(err)) {
			return fmt.Errorf("%w: campaign %s not found", ErrDeliverySkipped, campaignID)
		}
		return err
	}
	if campaign.Status == models.CampaignStatusCancelled {
		return fmt.Errorf("%w: campaign %s was cancelled", ErrDeliverySkipped, campaignID)
	}

	var sub models.Subscriber
	if err := d.db.WithContext(ctx).First(&sub, "id = ?", subscriberID).Error; err != nil {
		if IsNotFound(translate(err)) {
			return fmt.Errorf("%w: subscriber %s not found", ErrDeliverySkipped, subscriberID)
		}
		return err
	}
	if sub.Status != models.SubscriberStatusConfirmed {
		return fmt.Errorf("%w: subscriber %s is %s", ErrDeliverySkipped, subscriberID, sub.Status)
	}

	settings, err := models.GetSettings(d.db.WithContext(ctx))
	if err != nil {
		return err
	}

	msg, err := d.renderer.RenderCampaign(&campaign, &sub, settings, d.now())
	if err != nil {
		return fmt.Errorf("render campaign %s: %w", campaignID, err)
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		metrics.EmailsFailed.Inc()
		return err
	}
	metrics.EmailsSent.Inc()
	return nil
}

// DeliverConfirmation sends the double opt-in email to a pending subscriber.
func (d *Delivery) DeliverConfirmation(ctx context.Context, subscriberID string) error {
	var sub models.Subscriber
	if err := d.db.WithContext(ctx).First(&sub, "id = ?", subscriberID).Error; err != nil {
		if IsNotFound(translate(err)) {
			return fmt.Errorf("%w: subscriber %s not found", ErrDeliverySkipped, subscriberID)
		}
		return err
	}
	if sub.Status != models.SubscriberStatusPending {
		return fmt.Errorf("%w: subscriber %s is %s", ErrDeliverySkipped, subscriberID, sub.Status)
	}

	msg, err := d.renderer.RenderConfirmation(&sub)
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, msg)
}

// RecordBounce counts a campaign email that exhausted its retries.
func (d *Delivery) RecordBounce(ctx context.Context, campaignID string) error {
	return d.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		UpdateColumn("bounce_count", gorm.Expr("bounce_count + 1")).Error
}
