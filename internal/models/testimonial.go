package models

import (
	"strings"
	"time"

	"cybersite/internal/utils/text"
)

type TestimonialStatus string

const (
	TestimonialStatusPending  TestimonialStatus = "pending"
	TestimonialStatusApproved TestimonialStatus = "approved"
	TestimonialStatusRejected TestimonialStatus = "rejected"
)

func (s TestimonialStatus) IsValid() bool {
	switch s {
	case TestimonialStatusPending, TestimonialStatusApproved, TestimonialStatusRejected:
		return true
	}
	return false
}

type TestimonialSource string

const (
	TestimonialSourceWebsite  TestimonialSource = "website"
	TestimonialSourceEmail    TestimonialSource = "email"
	TestimonialSourceLinkedIn TestimonialSource = "linkedin"
	TestimonialSourceClutch   TestimonialSource = "clutch"
	TestimonialSourceGoogle   TestimonialSource = "google"
	TestimonialSourceOther    TestimonialSource = "other"
)

func (s TestimonialSource) IsValid() bool {
	switch s {
	case TestimonialSourceWebsite, TestimonialSourceEmail, TestimonialSourceLinkedIn,
		TestimonialSourceClutch, TestimonialSourceGoogle, TestimonialSourceOther:
		return true
	}
	return false
}

type Testimonial struct {
	Base
	AuthorName  string            `gorm:"not null" json:"authorName" validate:"required,max=120"`
	AuthorTitle *string           `json:"authorTitle" validate:"omitempty,max=120"`
	Company     *string           `json:"company" validate:"omitempty,max=120"`
	Email       *string           `json:"email" validate:"omitempty,email"`
	AvatarURL   *string           `json:"avatarUrl" validate:"omitempty,url"`
	Quote       string            `gorm:"type:text;not null" json:"quote" validate:"required,min=10,max=2000"`
	Rating      int               `gorm:"not null" json:"rating" validate:"min=1,max=5"`
	Status      TestimonialStatus `gorm:"not null;index" json:"status" validate:"required,testimonial_status"`
	Featured    bool              `gorm:"index" json:"featured"`
	Verified    bool              `json:"verified"`
	VerifiedAt  *time.Time        `json:"verifiedAt"`
	Source      TestimonialSource `gorm:"not null" json:"source" validate:"required,testimonial_source"`
}

func (t *Testimonial) Normalize() {
	t.AuthorName = strings.TrimSpace(t.AuthorName)
	t.Quote = strings.TrimSpace(t.Quote)
	if t.Status == "" {
		t.Status = TestimonialStatusPending
	}
	if t.Source == "" {
		t.Source = TestimonialSourceWebsite
	}
	if t.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*t.Email))
		t.Email = &lowered
	}
	if t.Verified && t.VerifiedAt == nil {
		now := time.Now()
		t.VerifiedAt = &now
	}
	if !t.Verified {
		t.VerifiedAt = nil
	}
	text.NullIfEmpty(&t.AuthorTitle)
	text.NullIfEmpty(&t.Company)
	text.NullIfEmpty(&t.Email)
	text.NullIfEmpty(&t.AvatarURL)
}

// TestimonialAction is a moderation action applied to a set of testimonials at once.
type TestimonialAction string

const (
	TestimonialActionApprove   TestimonialAction = "approve"
	TestimonialActionReject    TestimonialAction = "reject"
	TestimonialActionFeature   TestimonialAction = "feature"
	TestimonialActionUnfeature TestimonialAction = "unfeature"
	TestimonialActionVerify    TestimonialAction = "verify"
	TestimonialActionDelete    TestimonialAction = "delete"
)

// Updates returns the column changes an action applies, or nil for delete.
func (a TestimonialAction) Updates(now time.Time) (map[string]interface{}, bool) {
	switch a {
	case TestimonialActionApprove:
		return map[string]interface{}{"status": TestimonialStatusApproved}, true
	case TestimonialActionReject:
		return map[string]interface{}{"status": TestimonialStatusRejected, "featured": false}, true
	case TestimonialActionFeature:
		return map[string]interface{}{"featured": true}, true
	case TestimonialActionUnfeature:
		return map[string]interface{}{"featured": false}, true
	case TestimonialActionVerify:
		return map[string]interface{}{"verified": true, "verified_at": now}, true
	case TestimonialActionDelete:
		return nil, true
	}
	return nil, false
}
