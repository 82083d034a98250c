// Package templates is the built-in catalog of campaign email bodies.
// Bodies carry {{name}}, {{email}}, {{unsubscribe_url}}, {{social_links}},
// {{month}} and {{year}} placeholders that are filled in at send time.
package templates

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed html/*.html
var files embed.FS

type Category string

const (
	CategoryNewsletter    Category = "newsletter"
	CategorySecurityAlert Category = "security-alert"
	CategoryEvent         Category = "event"
	CategoryWelcome       Category = "welcome"
	CategoryMonthlyDigest Category = "monthly-digest"
	CategoryPromotion     Category = "promotion"
)

// Categories in display order.
var Categories = []Category{
	CategoryNewsletter,
	CategorySecurityAlert,
	CategoryEvent,
	CategoryWelcome,
	CategoryMonthlyDigest,
	CategoryPromotion,
}

type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Subject     string   `json:"subject"`
	PreviewText string   `json:"previewText"`
	HTMLContent string   `json:"htmlContent"`
}

var entries = []struct {
	Template
	file string
}{
	{Template{ID: "monthly-newsletter", Name: "Monthly Newsletter", Category: CategoryNewsletter,
		Subject: "Your {{month}} security briefing", PreviewText: "Top stories and guidance from our team"}, "newsletter.html"},
	{Template{ID: "vulnerability-alert", Name: "Vulnerability Alert", Category: CategorySecurityAlert,
		Subject: "Security alert: action recommended", PreviewText: "A new vulnerability may affect your systems"}, "security-alert.html"},
	{Template{ID: "webinar-invite", Name: "Webinar Invitation", Category: CategoryEvent,
		Subject: "You're invited: live security webinar", PreviewText: "Reserve your seat for our next session"}, "event.html"},
	{Template{ID: "welcome", Name: "Welcome Email", Category: CategoryWelcome,
		Subject: "Welcome to our security newsletter", PreviewText: "Thanks for subscribing"}, "welcome.html"},
	{Template{ID: "monthly-digest", Name: "Monthly Digest", Category: CategoryMonthlyDigest,
		Subject: "{{month}} {{year}} digest", PreviewText: "The month in security"}, "monthly-digest.html"},
	{Template{ID: "assessment-offer", Name: "Assessment Offer", Category: CategoryPromotion,
		Subject: "A free security assessment for your team", PreviewText: "Limited time offer"}, "promotion.html"},
}

var (
	catalog []Template
	byID    map[string]Template
)

func init() {
	byID = make(map[string]Template, len(entries))
	for _, e := range entries {
		body, err := files.ReadFile("html/" + e.file)
		if err != nil {
			panic(fmt.Sprintf("templates: missing %s: %v", e.file, err))
		}
		t := e.Template
		t.HTMLContent = string(body)
		catalog = append(catalog, t)
		byID[t.ID] = t
	}
	sort.SliceStable(catalog, func(i, j int) bool {
		return categoryIndex(catalog[i].Category) < categoryIndex(catalog[j].Category)
	})
}

func categoryIndex(c Category) int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}

// IsValidCategory reports whether c is one of the known categories.
func IsValidCategory(c Category) bool {
	return categoryIndex(c) < len(Categories)
}

// List returns the templates of a category, or all of them when category is empty.
// The result is a copy.
func List(category Category) []Template {
	out := make([]Template, 0, len(catalog))
	for _, t := range catalog {
		if category == "" || t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Get looks a template up by id.
func Get(id string) (Template, bool) {
	t, ok := byID[id]
	return t, ok
}
