package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// BaseModel exposes the embedded columns to generic code.
func (base *Base) BaseModel() *Base {
	return base
}

// Entity is satisfied by every model that embeds Base.
type Entity interface {
	BaseModel() *Base
}

// Normalizer is implemented by models that derive or clean fields
// (slugs, defaults, list cleanup, empty-to-null) before validation.
type Normalizer interface {
	Normalize()
}

// Sluggable is implemented by models with a unique slug column.
type Sluggable interface {
	GetSlug() string
}

// Normalize runs the model's Normalizer if it has one.
func Normalize(v interface{}) {
	if n, ok := v.(Normalizer); ok {
		n.Normalize()
	}
}

// Publication status shared by case studies and resources
type PublishStatus string

const (
	PublishStatusDraft     PublishStatus = "draft"
	PublishStatusPublished PublishStatus = "published"
	PublishStatusArchived  PublishStatus = "archived"
)

func (s PublishStatus) IsValid() bool {
	switch s {
	case PublishStatusDraft, PublishStatusPublished, PublishStatusArchived:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleSuperAdmin UserRole = "SUPER_ADMIN"
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleEditor     UserRole = "EDITOR"
)

// IsValidUserRole checks if a given role is valid
func IsValidUserRole(role UserRole) bool {
	switch role {
	case UserRoleAdmin, UserRoleEditor, UserRoleSuperAdmin:
		return true
	default:
		return false
	}
}
