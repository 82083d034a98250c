package models

import (
	"strings"
	"time"

	"cybersite/internal/utils/text"

	"gorm.io/datatypes"
)

type EventType string

const (
	EventTypeWebinar    EventType = "webinar"
	EventTypeWorkshop   EventType = "workshop"
	EventTypeConference EventType = "conference"
	EventTypeMeetup     EventType = "meetup"
	EventTypeTraining   EventType = "training"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeWebinar, EventTypeWorkshop, EventTypeConference, EventTypeMeetup, EventTypeTraining:
		return true
	}
	return false
}

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusLive      EventStatus = "live"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusUpcoming, EventStatusLive, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

type Speaker struct {
	Name     string `json:"name" validate:"required"`
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

type Event struct {
	Base
	Title           string                       `gorm:"not null" json:"title" validate:"required,max=200"`
	Slug            string                       `gorm:"uniqueIndex;not null" json:"slug" validate:"required,max=220"`
	Description     *string                      `gorm:"type:text" json:"description"`
	Type            EventType                    `gorm:"not null;index" json:"type" validate:"required,event_type"`
	Status          EventStatus                  `gorm:"not null;index" json:"status" validate:"required,event_status"`
	StartsAt        time.Time                    `gorm:"not null;index" json:"startsAt" validate:"required"`
	EndsAt          *time.Time                   `json:"endsAt"`
	Timezone        string                       `gorm:"not null" json:"timezone" validate:"required,timezone"`
	IsVirtual       bool                         `json:"isVirtual"`
	MeetingURL      *string                      `json:"meetingUrl" validate:"omitempty,url"`
	Location        *string                      `json:"location"`
	Capacity        *int                         `json:"capacity" validate:"omitempty,min=1"`
	RegisteredCount int                          `gorm:"not null;default:0" json:"registeredCount" validate:"min=0"`
	Speakers        datatypes.JSONSlice[Speaker] `json:"speakers" validate:"dive"`
	RegistrationURL *string                      `json:"registrationUrl" validate:"omitempty,url"`
	ImageURL        *string                      `json:"imageUrl" validate:"omitempty,url"`
	Featured        bool                         `gorm:"index" json:"featured"`
}

func (e *Event) GetSlug() string { return e.Slug }

func (e *Event) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	e.Slug = deriveSlug(e.Slug, e.Title)
	if e.Status == "" {
		e.Status = EventStatusDraft
	}
	if e.Type == "" {
		e.Type = EventTypeWebinar
	}
	if e.Timezone == "" {
		e.Timezone = "UTC"
	}
	speakers := make(datatypes.JSONSlice[Speaker], 0, len(e.Speakers))
	for _, s := range e.Speakers {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		speakers = append(speakers, s)
	}
	e.Speakers = speakers
	text.NullIfEmpty(&e.Description)
	text.NullIfEmpty(&e.MeetingURL)
	text.NullIfEmpty(&e.Location)
	text.NullIfEmpty(&e.RegistrationURL)
	text.NullIfEmpty(&e.ImageURL)
}
