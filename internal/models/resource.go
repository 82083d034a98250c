package models

import (
	"strings"

	"cybersite/internal/utils/text"

	"gorm.io/datatypes"
)

type ResourceType string

const (
	ResourceTypeWhitepaper ResourceType = "whitepaper"
	ResourceTypeEbook      ResourceType = "ebook"
	ResourceTypeGuide      ResourceType = "guide"
	ResourceTypeReport     ResourceType = "report"
	ResourceTypeChecklist  ResourceType = "checklist"
	ResourceTypeDatasheet  ResourceType = "datasheet"
	ResourceTypeWebinar    ResourceType = "webinar"
	ResourceTypeCaseStudy  ResourceType = "case_study"
)

func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceTypeWhitepaper, ResourceTypeEbook, ResourceTypeGuide, ResourceTypeReport,
		ResourceTypeChecklist, ResourceTypeDatasheet, ResourceTypeWebinar, ResourceTypeCaseStudy:
		return true
	}
	return false
}

// Resource is a downloadable asset listed on the resources page.
type Resource struct {
	Base
	Title         string                      `gorm:"not null" json:"title" validate:"required,max=200"`
	Slug          string                      `gorm:"uniqueIndex;not null" json:"slug" validate:"required,max=220"`
	Description   *string                     `gorm:"type:text" json:"description"`
	Type          ResourceType                `gorm:"not null;index" json:"type" validate:"required,resource_type"`
	Category      string                      `gorm:"not null;index" json:"category" validate:"required,max=80"`
	FileURL       string                      `gorm:"not null" json:"fileUrl" validate:"required,url"`
	FileName      *string                     `json:"fileName"`
	FileSize      *int64                      `json:"fileSize" validate:"omitempty,min=0"`
	PageCount     *int                        `json:"pageCount" validate:"omitempty,min=1"`
	ReadTime      *int                        `json:"readTime" validate:"omitempty,min=1"`
	Topics        datatypes.JSONSlice[string] `json:"topics"`
	DownloadCount int                         `gorm:"not null;default:0" json:"downloadCount"`
	Featured      bool                        `gorm:"index" json:"featured"`
	Status        PublishStatus               `gorm:"not null;index" json:"status" validate:"required,publish_status"`
	Downloads     []ResourceDownload          `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"downloads,omitempty" validate:"-"`
}

func (r *Resource) GetSlug() string { return r.Slug }

func (r *Resource) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = deriveSlug(r.Slug, r.Title)
	r.Category = strings.TrimSpace(r.Category)
	if r.Status == "" {
		r.Status = PublishStatusDraft
	}
	r.Topics = text.CleanList(r.Topics)
	text.NullIfEmpty(&r.Description)
	text.NullIfEmpty(&r.FileName)
}

// ResourceDownload records one download of a resource from the public site.
type ResourceDownload struct {
	Base
	ResourceID string  `gorm:"type:uuid;not null;index" json:"resourceId"`
	Name       *string `json:"name"`
	Email      *string `gorm:"index" json:"email" validate:"omitempty,email"`
	Company    *string `json:"company"`
	IPAddress  string  `json:"ipAddress"`
	UserAgent  string  `json:"userAgent"`
}
