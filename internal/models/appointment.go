package models

import (
	"strings"
	"time"

	"cybersite/internal/utils/text"
)

type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeDemo         AppointmentType = "demo"
	AppointmentTypeDiscovery    AppointmentType = "discovery"
	AppointmentTypeFollowUp     AppointmentType = "follow_up"
	AppointmentTypeSupport      AppointmentType = "support"
	AppointmentTypeTraining     AppointmentType = "training"
)

func (t AppointmentType) IsValid() bool {
	switch t {
	case AppointmentTypeConsultation, AppointmentTypeDemo, AppointmentTypeDiscovery,
		AppointmentTypeFollowUp, AppointmentTypeSupport, AppointmentTypeTraining:
		return true
	}
	return false
}

type AppointmentStatus string

const (
	AppointmentStatusPending     AppointmentStatus = "pending"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusNoShow      AppointmentStatus = "no_show"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow, AppointmentStatusRescheduled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	Title         string            `gorm:"not null" json:"title" validate:"required,max=200"`
	Description   *string           `gorm:"type:text" json:"description"`
	Type          AppointmentType   `gorm:"not null;index" json:"type" validate:"required,appointment_type"`
	Status        AppointmentStatus `gorm:"not null;index" json:"status" validate:"required,appointment_status"`
	ScheduledAt   time.Time         `gorm:"not null;index" json:"scheduledAt" validate:"required"`
	Duration      int               `gorm:"not null" json:"duration" validate:"min=15,max=480"`
	Timezone      string            `gorm:"not null" json:"timezone" validate:"required,timezone"`
	ClientName    string            `gorm:"not null" json:"clientName" validate:"required,max=120"`
	ClientEmail   string            `gorm:"not null;index" json:"clientEmail" validate:"required,email"`
	ClientPhone   *string           `json:"clientPhone" validate:"omitempty,max=40"`
	ClientCompany *string           `json:"clientCompany" validate:"omitempty,max=120"`
	IsVirtual     bool              `json:"isVirtual"`
	MeetingURL    *string           `json:"meetingUrl" validate:"omitempty,url"`
	Location      *string           `json:"location"`
	Notes         *string           `gorm:"type:text" json:"notes"`
	ConfirmedAt   *time.Time        `json:"confirmedAt"`
	CompletedAt   *time.Time        `json:"completedAt"`
	CancelledAt   *time.Time        `json:"cancelledAt"`
}

func (a *Appointment) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.ClientName = strings.TrimSpace(a.ClientName)
	a.ClientEmail = strings.ToLower(strings.TrimSpace(a.ClientEmail))
	if a.Type == "" {
		a.Type = AppointmentTypeConsultation
	}
	if a.Status == "" {
		a.Status = AppointmentStatusPending
	}
	if a.Duration == 0 {
		a.Duration = 30
	}
	if a.Timezone == "" {
		a.Timezone = "UTC"
	}
	text.NullIfEmpty(&a.Description)
	text.NullIfEmpty(&a.ClientPhone)
	text.NullIfEmpty(&a.ClientCompany)
	text.NullIfEmpty(&a.MeetingURL)
	text.NullIfEmpty(&a.Location)
	text.NullIfEmpty(&a.Notes)
}

// StampStatus records when the appointment entered its current status.
func (a *Appointment) StampStatus(previous AppointmentStatus, now time.Time) {
	if a.Status == previous {
		return
	}
	switch a.Status {
	case AppointmentStatusConfirmed:
		a.ConfirmedAt = &now
	case AppointmentStatusCompleted:
		a.CompletedAt = &now
	case AppointmentStatusCancelled:
		a.CancelledAt = &now
	}
}
