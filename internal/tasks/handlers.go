package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cybersite/internal/services"
	"cybersite/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// Deliverer sends the emails behind queued tasks.
type Deliverer interface {
	DeliverCampaignEmail(ctx context.Context, campaignID, subscriberID string) error
	DeliverConfirmation(ctx context.Context, subscriberID string) error
	RecordBounce(ctx context.Context, campaignID string) error
}

// CampaignDispatcher runs the periodic campaign sweep.
type CampaignDispatcher interface {
	DispatchDue(ctx context.Context) (*services.DispatchReport, error)
}

// Limiter throttles outgoing email.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

// TaskHandler processes the email and campaign tasks.
type TaskHandler struct {
	delivery  Deliverer
	campaigns CampaignDispatcher
	limiter   Limiter
	logger    *logger.Logger
}

// NewTaskHandler creates a new TaskHandler. limiter may be nil.
func NewTaskHandler(delivery Deliverer, campaigns CampaignDispatcher, limiter Limiter) *TaskHandler {
	return &TaskHandler{
		delivery:  delivery,
		campaigns: campaigns,
		limiter:   limiter,
		logger:    logger.New("TASK_HANDLER"),
	}
}

func (h *TaskHandler) allow(ctx context.Context) error {
	if h.limiter == nil {
		return nil
	}
	ok, err := h.limiter.Allow(ctx, "smtp")
	if err != nil {
		// a broken limiter must not stop delivery
		h.logger.Warn("Rate limiter unavailable: %v", err)
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

// HandleCampaignEmail sends one campaign email. Skipped deliveries finish
// the task; the last failed attempt counts as a bounce.
func (h *TaskHandler) HandleCampaignEmail(ctx context.Context, t *asynq.Task) error {
	var p CampaignEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.allow(ctx); err != nil {
		return err
	}

	err := h.delivery.DeliverCampaignEmail(ctx, p.CampaignID, p.SubscriberID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrDeliverySkipped):
		h.logger.Info("Skipped campaign email: %v", err)
		return nil
	}

	if lastAttempt(ctx) {
		if bounceErr := h.delivery.RecordBounce(ctx, p.CampaignID); bounceErr != nil {
			h.logger.Warn("Failed to record bounce for campaign %s: %v", p.CampaignID, bounceErr)
		}
	}
	return h.logger.Error("Campaign %s to subscriber %s failed", err, p.CampaignID, p.SubscriberID)
}

func (h *TaskHandler) HandleConfirmationEmail(ctx context.Context, t *asynq.Task) error {
	var p ConfirmationEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.allow(ctx); err != nil {
		return err
	}

	err := h.delivery.DeliverConfirmation(ctx, p.SubscriberID)
	if errors.Is(err, services.ErrDeliverySkipped) {
		h.logger.Info("Skipped confirmation email: %v", err)
		return nil
	}
	return err
}

// HandleCampaignRecurring sends the campaigns that are due.
func (h *TaskHandler) HandleCampaignRecurring(ctx context.Context, _ *asynq.Task) error {
	report, err := h.campaigns.DispatchDue(ctx)
	if err != nil {
		return h.logger.Error("Campaign dispatch failed", err)
	}
	if report.Recurring+report.Scheduled > 0 {
		h.logger.Success("Dispatched %d recurring and %d scheduled campaigns, %d emails",
			report.Recurring, report.Scheduled, report.Emails)
	}
	return nil
}

func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return false
	}
	return retried >= maxRetry
}
