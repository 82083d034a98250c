package text

import (
	"regexp"
	"strings"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugHyphens      = regexp.MustCompile(`-{2,}`)
)

// GenerateSlug turns a title into a URL slug: lowercase, non-alphanumerics
// stripped, whitespace collapsed to single hyphens. Running it on its own
// output returns the same string.
func GenerateSlug(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// CleanList trims every entry, drops blanks and removes duplicates while
// keeping the first occurrence's position.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// NullIfEmpty clears a nullable string field when it only holds whitespace.
func NullIfEmpty(p **string) {
	if *p == nil {
		return
	}
	if strings.TrimSpace(**p) == "" {
		*p = nil
	}
}
