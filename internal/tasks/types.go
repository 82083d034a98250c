package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	// one campaign email to one subscriber
	TaskTypeCampaignEmail = "campaign:email"
	// double opt-in email after subscribing
	TaskTypeConfirmationEmail = "newsletter:confirmation"
	// periodic dispatch of monthly and scheduled campaigns
	TaskTypeCampaignRecurring = "campaign:recurring"
)

// Task Queues
const (
	QueueCritical = "critical" // For time-sensitive tasks like email sending
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // For background tasks like cleanup
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
	TimeoutLong   = 30 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 5
	RetryDefault = 3
	RetryMin     = 1
)

type CampaignEmailPayload struct {
	CampaignID   string `json:"campaign_id"`
	SubscriberID string `json:"subscriber_id"`
}

type ConfirmationEmailPayload struct {
	SubscriberID string `json:"subscriber_id"`
}

func NewCampaignEmailTask(campaignID, subscriberID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CampaignEmailPayload{CampaignID: campaignID, SubscriberID: subscriberID})
	if err != nil {
		return nil, fmt.Errorf("marshal campaign email payload: %w", err)
	}
	return asynq.NewTask(TaskTypeCampaignEmail, payload), nil
}

func NewConfirmationEmailTask(subscriberID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ConfirmationEmailPayload{SubscriberID: subscriberID})
	if err != nil {
		return nil, fmt.Errorf("marshal confirmation payload: %w", err)
	}
	return asynq.NewTask(TaskTypeConfirmationEmail, payload), nil
}

func NewCampaignRecurringTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCampaignRecurring, nil)
}
