package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"cybersite/internal/config"
	"cybersite/internal/models"
	"cybersite/internal/utils"
	"cybersite/internal/utils/crypto"

	"github.com/PuerkitoBio/goquery"
)

// Placeholder tokens understood in campaign subjects and bodies.
const (
	PlaceholderName           = "{{name}}"
	PlaceholderEmail          = "{{email}}"
	PlaceholderUnsubscribeURL = "{{unsubscribe_url}}"
	PlaceholderSocialLinks    = "{{social_links}}"
	PlaceholderMonth          = "{{month}}"
	PlaceholderYear           = "{{year}}"
)

// RenderContext carries the per-recipient values substituted into a campaign.
type RenderContext struct {
	Name           string
	Email          string
	UnsubscribeURL string
	SocialLinks    map[string]string
	Now            time.Time
}

// SubstitutePlaceholders fills every placeholder in one pass, so values that
// themselves contain placeholder text are left as they are. Name and email
// are HTML-escaped.
func SubstitutePlaceholders(content string, rc RenderContext) string {
	return placeholderReplacer(rc, true).Replace(content)
}

// SubstituteSubject is SubstitutePlaceholders for the plain-text subject line.
func SubstituteSubject(subject string, rc RenderContext) string {
	return placeholderReplacer(rc, false).Replace(subject)
}

func placeholderReplacer(rc RenderContext, escape bool) *strings.Replacer {
	name := strings.TrimSpace(rc.Name)
	if name == "" {
		name = "there"
	}
	email := rc.Email
	if escape {
		name = html.EscapeString(name)
		email = html.EscapeString(email)
	}
	social := ""
	if escape {
		social = RenderSocialLinks(rc.SocialLinks)
	}
	return strings.NewReplacer(
		PlaceholderName, name,
		PlaceholderEmail, email,
		PlaceholderUnsubscribeURL, html.EscapeString(rc.UnsubscribeURL),
		PlaceholderSocialLinks, social,
		PlaceholderMonth, rc.Now.Month().String(),
		PlaceholderYear, fmt.Sprintf("%d", rc.Now.Year()),
	)
}

var socialLabels = map[string]string{
	"linkedin": "LinkedIn",
	"twitter":  "Twitter",
	"facebook": "Facebook",
	"github":   "GitHub",
	"youtube":  "YouTube",
}

// RenderSocialLinks renders the links as anchors separated by " | ", ordered by network name.
func RenderSocialLinks(links map[string]string) string {
	if len(links) == 0 {
		return ""
	}
	parts := make([]string, 0, len(links))
	for _, key := range utils.SortedKeys(links) {
		label, ok := socialLabels[strings.ToLower(key)]
		if !ok {
			label = key
		}
		parts = append(parts, fmt.Sprintf(`<a href="%s" style="color: #2563eb; text-decoration: none;">%s</a>`,
			html.EscapeString(links[key]), html.EscapeString(label)))
	}
	return strings.Join(parts, " | ")
}

// InsertAttachments adds a download list before the closing body tag, or at
// the end when the content has none.
func InsertAttachments(content string, attachments []models.Attachment) string {
	if len(attachments) == 0 {
		return content
	}
	var b strings.Builder
	b.WriteString(`<div style="margin-top: 24px; padding: 16px; border: 1px solid #e5e7eb;">`)
	b.WriteString(`<p style="margin: 0 0 8px;"><strong>Attachments</strong></p><ul style="margin: 0; padding-left: 20px;">`)
	for _, a := range attachments {
		b.WriteString(fmt.Sprintf(`<li><a href="%s">%s</a>`, html.EscapeString(a.URL), html.EscapeString(a.Name)))
		if a.Size > 0 {
			b.WriteString(" (" + utils.HumanSize(a.Size) + ")")
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul></div>")

	idx := strings.LastIndex(strings.ToLower(content), "</body>")
	if idx < 0 {
		return content + b.String()
	}
	return content[:idx] + b.String() + content[idx:]
}

// TrackLinks rewrites outgoing http(s) links to signed click redirects and
// appends the open pixel. Links in skip are left untouched.
func TrackLinks(content, campaignID string, signer *crypto.LinkSigner, skip ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	skipped := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipped[s] = struct{}{}
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if _, ok := skipped[href]; ok {
			return
		}
		lower := strings.ToLower(href)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			return
		}
		s.SetAttr("href", signer.ClickURL(campaignID, href))
	})

	pixel := fmt.Sprintf(`<img src="%s" width="1" height="1" alt="" style="display:none;">`, html.EscapeString(signer.OpenURL(campaignID)))
	doc.Find("body").First().AppendHtml(pixel)

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out, nil
}

// PlainText derives the text/plain alternative of an HTML email.
func PlainText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, head").Remove()
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		label := strings.Join(strings.Fields(s.Text()), " ")
		href, _ := s.Attr("href")
		switch {
		case href == "" || href == label:
		case label == "":
			label = href
		default:
			label = fmt.Sprintf("%s (%s)", label, href)
		}
		s.ReplaceWithHtml(html.EscapeString(label))
	})
	doc.Find("br, hr").ReplaceWithHtml("\n")
	doc.Find("li").PrependHtml("- ")
	doc.Find("p, div, h1, h2, h3, h4, h5, h6, li, tr, table, ul, ol").AppendHtml("\n")

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")), nil
}

// EmailRenderer turns stored campaigns into per-subscriber messages.
type EmailRenderer struct {
	signer   *crypto.LinkSigner
	apiURL   string
	siteName string
}

func NewEmailRenderer(cfg *config.Config) *EmailRenderer {
	return &EmailRenderer{
		signer:   crypto.NewLinkSigner(cfg.Tracking.Secret, cfg.APIURL()),
		apiURL:   cfg.APIURL(),
		siteName: cfg.Site.Name,
	}
}

func (r *EmailRenderer) Signer() *crypto.LinkSigner {
	return r.signer
}

func (r *EmailRenderer) UnsubscribeURL(token string) string {
	return fmt.Sprintf("%s/api/newsletter/unsubscribe/%s", r.apiURL, token)
}

func (r *EmailRenderer) ConfirmURL(token string) string {
	return fmt.Sprintf("%s/api/newsletter/confirm/%s", r.apiURL, token)
}

// RenderCampaign personalises a campaign for one subscriber. Social links
// come from the site settings, overridden by the campaign's own map.
func (r *EmailRenderer) RenderCampaign(c *models.Campaign, sub *models.Subscriber, settings *models.Settings, now time.Time) (*Message, error) {
	social := map[string]string{}
	if settings != nil {
		social = settings.SocialLinks()
	}
	social = utils.MergeStringMaps(social, utils.JSONMapToStrings(c.SocialLinks))

	rc := RenderContext{
		Name:           sub.DisplayName(),
		Email:          sub.Email,
		UnsubscribeURL: r.UnsubscribeURL(sub.Token),
		SocialLinks:    social,
		Now:            now,
	}

	body := SubstitutePlaceholders(c.HTMLContent, rc)
	body = InsertAttachments(body, c.Attachments)

	text, err := PlainText(body)
	if err != nil {
		return nil, err
	}
	tracked, err := TrackLinks(body, c.ID, r.signer, rc.UnsubscribeURL)
	if err != nil {
		return nil, err
	}

	return &Message{
		ToEmail:        sub.Email,
		ToName:         sub.DisplayName(),
		Subject:        SubstituteSubject(c.Subject, rc),
		HTML:           tracked,
		Text:           text,
		UnsubscribeURL: rc.UnsubscribeURL,
	}, nil
}

// RenderConfirmation builds the double opt-in email sent after subscribing.
func (r *EmailRenderer) RenderConfirmation(sub *models.Subscriber) (*Message, error) {
	name := sub.DisplayName()
	if name == "" {
		name = "there"
	}
	confirm := r.ConfirmURL(sub.Token)
	body := fmt.Sprintf(`<!DOCTYPE html><html><body style="font-family: Arial, sans-serif;">`+
		`<p>Hi %s,</p><p>Please confirm your subscription to the %s newsletter.</p>`+
		`<p><a href="%s">Confirm subscription</a></p>`+
		`<p style="font-size: 12px; color: #6b7280;">If you did not sign up, ignore this email.</p></body></html>`,
		html.EscapeString(name), html.EscapeString(r.siteName), html.EscapeString(confirm))

	text, err := PlainText(body)
	if err != nil {
		return nil, err
	}
	return &Message{
		ToEmail: sub.Email,
		ToName:  sub.DisplayName(),
		Subject: fmt.Sprintf("Confirm your subscription to %s", r.siteName),
		HTML:    body,
		Text:    text,
	}, nil
}
