package models

import (
	"strings"

	"cybersite/internal/utils/text"
)

// SettingsID is the primary key of the single settings row.
const SettingsID = "00000000-0000-0000-0000-000000000001"

// Settings holds the company contact details shown across the public site.
type Settings struct {
	Base
	CompanyName  string  `gorm:"not null" json:"companyName" validate:"required,max=120"`
	Email        string  `gorm:"not null" json:"email" validate:"required,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=40"`
	AddressLine1 *string `json:"addressLine1" validate:"omitempty,max=200"`
	AddressLine2 *string `json:"addressLine2" validate:"omitempty,max=200"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postalCode" validate:"omitempty,max=20"`
	Country      *string `json:"country" validate:"omitempty,max=100"`
	LinkedIn     *string `json:"linkedin" validate:"omitempty,url"`
	Twitter      *string `json:"twitter" validate:"omitempty,url"`
	Facebook     *string `json:"facebook" validate:"omitempty,url"`
	GitHub       *string `json:"github" validate:"omitempty,url"`
	YouTube      *string `json:"youtube" validate:"omitempty,url"`
}

func (Settings) TableName() string {
	return "site_settings"
}

func (s *Settings) Normalize() {
	s.ID = SettingsID
	s.CompanyName = strings.TrimSpace(s.CompanyName)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	for _, p := range []**string{
		&s.Phone, &s.AddressLine1, &s.AddressLine2, &s.City, &s.State, &s.PostalCode, &s.Country,
		&s.LinkedIn, &s.Twitter, &s.Facebook, &s.GitHub, &s.YouTube,
	} {
		text.NullIfEmpty(p)
	}
}

// SocialLinks returns the configured social profiles keyed by network name.
func (s *Settings) SocialLinks() map[string]string {
	links := map[string]string{}
	add := func(name string, v *string) {
		if v != nil && *v != "" {
			links[name] = *v
		}
	}
	add("linkedin", s.LinkedIn)
	add("twitter", s.Twitter)
	add("facebook", s.Facebook)
	add("github", s.GitHub)
	add("youtube", s.YouTube)
	return links
}
