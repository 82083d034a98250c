package models

import (
	"strings"
	"time"

	"cybersite/internal/utils/text"

	"gorm.io/datatypes"
)

type Metric struct {
	Label string `json:"label" validate:"required"`
	Value string `json:"value" validate:"required"`
}

type CaseStudy struct {
	Base
	Title          string                      `gorm:"not null" json:"title" validate:"required,max=200"`
	Slug           string                      `gorm:"uniqueIndex;not null" json:"slug" validate:"required,max=220"`
	Client         string                      `gorm:"not null" json:"client" validate:"required,max=120"`
	Industry       string                      `gorm:"not null;index" json:"industry" validate:"required,max=80"`
	Summary        *string                     `gorm:"type:text" json:"summary"`
	Challenge      string                      `gorm:"type:text;not null" json:"challenge" validate:"required"`
	Solution       string                      `gorm:"type:text;not null" json:"solution" validate:"required"`
	Results        datatypes.JSONSlice[string] `json:"results"`
	Metrics        datatypes.JSONSlice[Metric] `json:"metrics" validate:"dive"`
	Services       datatypes.JSONSlice[string] `json:"services"`
	Featured       bool                        `gorm:"index" json:"featured"`
	Status         PublishStatus               `gorm:"not null;index" json:"status" validate:"required,publish_status"`
	DisplayOrder   int                         `gorm:"not null;default:0" json:"displayOrder" validate:"min=0"`
	ImageURL       *string                     `json:"imageUrl" validate:"omitempty,url"`
	SeoTitle       *string                     `json:"seoTitle" validate:"omitempty,max=70"`
	SeoDescription *string                     `json:"seoDescription" validate:"omitempty,max=160"`
	PublishedAt    *time.Time                  `json:"publishedAt"`
}

func (cs *CaseStudy) GetSlug() string { return cs.Slug }

func (cs *CaseStudy) Normalize() {
	cs.Title = strings.TrimSpace(cs.Title)
	cs.Slug = deriveSlug(cs.Slug, cs.Title)
	if cs.Status == "" {
		cs.Status = PublishStatusDraft
	}
	cs.Results = text.CleanList(cs.Results)
	cs.Services = text.CleanList(cs.Services)
	metrics := make(datatypes.JSONSlice[Metric], 0, len(cs.Metrics))
	for _, m := range cs.Metrics {
		m.Label, m.Value = strings.TrimSpace(m.Label), strings.TrimSpace(m.Value)
		if m.Label == "" && m.Value == "" {
			continue
		}
		metrics = append(metrics, m)
	}
	cs.Metrics = metrics
	if cs.Status == PublishStatusPublished && cs.PublishedAt == nil {
		now := time.Now()
		cs.PublishedAt = &now
	}
	text.NullIfEmpty(&cs.Summary)
	text.NullIfEmpty(&cs.ImageURL)
	text.NullIfEmpty(&cs.SeoTitle)
	text.NullIfEmpty(&cs.SeoDescription)
}

type Service struct {
	Base
	Title            string                      `gorm:"not null" json:"title" validate:"required,max=120"`
	Slug             string                      `gorm:"uniqueIndex;not null" json:"slug" validate:"required,max=140"`
	ShortDescription string                      `gorm:"not null" json:"shortDescription" validate:"required,max=300"`
	Description      *string                     `gorm:"type:text" json:"description"`
	Icon             *string                     `json:"icon"`
	Features         datatypes.JSONSlice[string] `json:"features"`
	Benefits         datatypes.JSONSlice[string] `json:"benefits"`
	Color            *string                     `json:"color" validate:"omitempty,max=32"`
	GradientFrom     *string                     `json:"gradientFrom" validate:"omitempty,max=32"`
	GradientTo       *string                     `json:"gradientTo" validate:"omitempty,max=32"`
	IsActive         bool                        `gorm:"index" json:"isActive"`
	DisplayOrder     int                         `gorm:"not null;default:0;index" json:"displayOrder" validate:"min=0"`
}

func (s *Service) GetSlug() string { return s.Slug }

func (s *Service) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Slug = deriveSlug(s.Slug, s.Title)
	s.Features = text.CleanList(s.Features)
	s.Benefits = text.CleanList(s.Benefits)
	text.NullIfEmpty(&s.Description)
	text.NullIfEmpty(&s.Icon)
	text.NullIfEmpty(&s.Color)
	text.NullIfEmpty(&s.GradientFrom)
	text.NullIfEmpty(&s.GradientTo)
}

// deriveSlug keeps a user-supplied slug (normalised) and falls back to the title.
func deriveSlug(slug, title string) string {
	if s := text.GenerateSlug(slug); s != "" {
		return s
	}
	return text.GenerateSlug(title)
}
