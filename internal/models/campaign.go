package models

import (
	"strings"
	"time"

	"cybersite/internal/templates"
	"cybersite/internal/utils/text"

	"gorm.io/datatypes"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusSent      CampaignStatus = "sent"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

func (s CampaignStatus) IsValid() bool {
	_, ok := campaignTransitions[s]
	return ok
}

type CampaignType string

const (
	CampaignTypeOneTime CampaignType = "one-time"
	CampaignTypeMonthly CampaignType = "monthly"
	CampaignTypeWelcome CampaignType = "welcome"
)

func (t CampaignType) IsValid() bool {
	switch t {
	case CampaignTypeOneTime, CampaignTypeMonthly, CampaignTypeWelcome:
		return true
	}
	return false
}

var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:     {CampaignStatusScheduled, CampaignStatusSending, CampaignStatusCancelled},
	CampaignStatusScheduled: {CampaignStatusDraft, CampaignStatusSending, CampaignStatusCancelled},
	CampaignStatusSending:   {CampaignStatusSent, CampaignStatusDraft},
	CampaignStatusSent:      {},
	CampaignStatusCancelled: {},
}

// IsValidCampaignTransition reports whether a campaign may move from one status to another.
// sending -> draft only happens when a send could not enqueue anything.
func IsValidCampaignTransition(from, to CampaignStatus) bool {
	for _, next := range campaignTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Attachment is a reference to an uploaded file, stored inline on the campaign.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Key  string `json:"key,omitempty"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type Campaign struct {
	Base
	Name            string                         `gorm:"not null" json:"name" validate:"required,max=200"`
	Subject         string                         `gorm:"not null" json:"subject" validate:"required,max=300"`
	PreviewText     *string                        `json:"previewText" validate:"omitempty,max=300"`
	HTMLContent     string                         `gorm:"type:text;not null" json:"htmlContent" validate:"required"`
	Status          CampaignStatus                 `gorm:"not null;index" json:"status" validate:"required,campaign_status"`
	Type            CampaignType                   `gorm:"not null;index" json:"type" validate:"required,campaign_type"`
	RecurringDay    *int                           `json:"recurringDay" validate:"omitempty,min=1,max=31"`
	IsActive        bool                           `json:"isActive"`
	ScheduledAt     *time.Time                     `json:"scheduledAt"`
	SentAt          *time.Time                     `json:"sentAt"`
	LastSentAt      *time.Time                     `json:"lastSentAt"`
	RecipientsCount int                            `gorm:"not null;default:0" json:"recipientsCount"`
	SentCount       int                            `gorm:"not null;default:0" json:"sentCount"`
	OpenCount       int                            `gorm:"not null;default:0" json:"openCount"`
	ClickCount      int                            `gorm:"not null;default:0" json:"clickCount"`
	BounceCount     int                            `gorm:"not null;default:0" json:"bounceCount"`
	Attachments     datatypes.JSONSlice[Attachment] `json:"attachments" validate:"dive"`
	SocialLinks     datatypes.JSONMap              `json:"socialLinks"`
	TemplateID      string                         `gorm:"-" json:"templateId,omitempty" validate:"omitempty,campaign_template"`
}

func (c *Campaign) Normalize() {
	c.ApplyTemplate()
	c.Name = strings.TrimSpace(c.Name)
	c.Subject = strings.TrimSpace(c.Subject)
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	if c.Type == "" {
		c.Type = CampaignTypeOneTime
	}
	if c.Type != CampaignTypeMonthly {
		c.RecurringDay = nil
	}
	if c.Attachments == nil {
		c.Attachments = datatypes.JSONSlice[Attachment]{}
	}
	if c.SocialLinks == nil {
		c.SocialLinks = datatypes.JSONMap{}
	}
	text.NullIfEmpty(&c.PreviewText)
}

// ApplyTemplate fills empty content fields from the catalog template named by TemplateID.
func (c *Campaign) ApplyTemplate() {
	if c.TemplateID == "" {
		return
	}
	t, ok := templates.Get(c.TemplateID)
	if !ok {
		return
	}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = t.Name
	}
	if strings.TrimSpace(c.Subject) == "" {
		c.Subject = t.Subject
	}
	if c.PreviewText == nil || strings.TrimSpace(*c.PreviewText) == "" {
		preview := t.PreviewText
		c.PreviewText = &preview
	}
	if strings.TrimSpace(c.HTMLContent) == "" {
		c.HTMLContent = t.HTMLContent
	}
	if c.Type == "" && t.Category == templates.CategoryWelcome {
		c.Type = CampaignTypeWelcome
	}
}

// IsEditable reports whether the campaign content may still be changed.
func (c *Campaign) IsEditable() bool {
	return c.Status == CampaignStatusDraft || c.Status == CampaignStatusScheduled
}

// RecurringDayIn returns the day of the month the campaign is due in the
// given month, clamped to the month's last day.
func (c *Campaign) RecurringDayIn(year int, month time.Month) int {
	if c.RecurringDay == nil {
		return 0
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if *c.RecurringDay > last {
		return last
	}
	return *c.RecurringDay
}

// DueForRecurringSend reports whether an active monthly campaign should go
// out on the given day and has not already gone out this month.
func (c *Campaign) DueForRecurringSend(now time.Time) bool {
	if c.Type != CampaignTypeMonthly || !c.IsActive || c.RecurringDay == nil {
		return false
	}
	if c.Status == CampaignStatusCancelled || c.Status == CampaignStatusSending {
		return false
	}
	if now.Day() != c.RecurringDayIn(now.Year(), now.Month()) {
		return false
	}
	if c.LastSentAt != nil && c.LastSentAt.Year() == now.Year() && c.LastSentAt.Month() == now.Month() {
		return false
	}
	return true
}
