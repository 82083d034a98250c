package models

import (
	"strings"
	"time"

	"cybersite/internal/utils/text"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriberStatus string

const (
	SubscriberStatusPending      SubscriberStatus = "pending"
	SubscriberStatusConfirmed    SubscriberStatus = "confirmed"
	SubscriberStatusUnsubscribed SubscriberStatus = "unsubscribed"
)

func (s SubscriberStatus) IsValid() bool {
	switch s {
	case SubscriberStatusPending, SubscriberStatusConfirmed, SubscriberStatusUnsubscribed:
		return true
	}
	return false
}

// Subscriber is a newsletter recipient. Token authenticates confirm and
// unsubscribe links.
type Subscriber struct {
	Base
	Email          string           `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Name           *string          `json:"name" validate:"omitempty,max=120"`
	Status         SubscriberStatus `gorm:"not null;index" json:"status" validate:"required,subscriber_status"`
	Token          string           `gorm:"uniqueIndex;not null" json:"-"`
	ConfirmedAt    *time.Time       `json:"confirmedAt"`
	UnsubscribedAt *time.Time       `json:"unsubscribedAt"`
}

func (s *Subscriber) Normalize() {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	if s.Status == "" {
		s.Status = SubscriberStatusPending
	}
	text.NullIfEmpty(&s.Name)
}

func (s *Subscriber) BeforeSave(tx *gorm.DB) error {
	if s.Token == "" {
		s.Token = uuid.NewString()
	}
	return nil
}

// DisplayName is the name used in greetings; empty when unknown.
func (s *Subscriber) DisplayName() string {
	if s.Name == nil {
		return ""
	}
	return *s.Name
}
