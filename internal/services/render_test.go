package services

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"cybersite/internal/models"
	"cybersite/internal/utils/crypto"

	"gorm.io/datatypes"
)

func TestSubstitutePlaceholders(t *testing.T) {
	now := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		content string
		rc      RenderContext
		want    string
	}{
		{
			name:    "name and email",
			content: "Hi {{name}} <{{email}}>",
			rc:      RenderContext{Name: "Ada", Email: "ada@example.com", Now: now},
			want:    "Hi Ada <ada@example.com>",
		},
		{
			name:    "missing name falls back",
			content: "Hi {{name}}",
			rc:      RenderContext{Now: now},
			want:    "Hi there",
		},
		{
			name:    "values are escaped",
			content: "Hi {{name}}",
			rc:      RenderContext{Name: "<b>Eve</b>", Now: now},
			want:    "Hi &lt;b&gt;Eve&lt;/b&gt;",
		},
		{
			name:    "single pass",
			content: "{{name}} / {{email}}",
			rc:      RenderContext{Name: "{{email}}", Email: "x@example.com", Now: now},
			want:    "{{email}} / x@example.com",
		},
		{
			name:    "repeated placeholders",
			content: "{{name}}{{name}}",
			rc:      RenderContext{Name: "Bo", Now: now},
			want:    "BoBo",
		},
		{
			name:    "date placeholders",
			content: "{{month}} {{year}}",
			rc:      RenderContext{Now: now},
			want:    "March 2025",
		},
		{
			name:    "unsubscribe url",
			content: `<a href="{{unsubscribe_url}}">x</a>`,
			rc:      RenderContext{UnsubscribeURL: "http://api.test/u/1", Now: now},
			want:    `<a href="http://api.test/u/1">x</a>`,
		},
		{
			name:    "unknown placeholders are kept",
			content: "{{company}}",
			rc:      RenderContext{Now: now},
			want:    "{{company}}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubstitutePlaceholders(tt.content, tt.rc); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubstituteSubjectDoesNotEscape(t *testing.T) {
	got := SubstituteSubject("News for {{name}} {{social_links}}", RenderContext{
		Name:        "Tom & Jerry",
		SocialLinks: map[string]string{"github": "https://github.com/acme"},
	})
	if got != "News for Tom & Jerry " {
		t.Fatalf("subject = %q", got)
	}
}

func TestRenderSocialLinks(t *testing.T) {
	if got := RenderSocialLinks(nil); got != "" {
		t.Fatalf("empty map rendered %q", got)
	}
	got := RenderSocialLinks(map[string]string{
		"twitter":  "https://twitter.com/acme",
		"linkedin": "https://linkedin.com/company/acme",
		"mastodon": "https://infosec.exchange/@acme",
	})
	parts := strings.Split(got, " | ")
	if len(parts) != 3 {
		t.Fatalf("expected three links, got %q", got)
	}
	for i, label := range []string{">LinkedIn<", ">mastodon<", ">Twitter<"} {
		if !strings.Contains(parts[i], label) {
			t.Errorf("link %d = %q, want label %s", i, parts[i], label)
		}
	}
}

func TestInsertAttachments(t *testing.T) {
	attachments := []models.Attachment{
		{Name: "Report.pdf", URL: "https://cdn.test/r.pdf", Size: 2048},
		{Name: "notes & tips", URL: "https://cdn.test/n.txt"},
	}

	got := InsertAttachments("<html><BODY><p>Hi</p></BODY></html>", attachments)
	idx := strings.Index(got, "Attachments")
	if idx < 0 || idx > strings.Index(got, "</BODY>") {
		t.Fatalf("attachments not placed before the closing body tag: %s", got)
	}
	if !strings.Contains(got, "Report.pdf</a> (2.0 KB)") || !strings.Contains(got, "notes &amp; tips") {
		t.Fatalf("unexpected attachment list: %s", got)
	}

	fragment := InsertAttachments("<p>no body</p>", attachments)
	if !strings.HasPrefix(fragment, "<p>no body</p><div") {
		t.Fatalf("fragment should get the list appended: %s", fragment)
	}

	if got := InsertAttachments("<p>x</p>", nil); got != "<p>x</p>" {
		t.Fatalf("no attachments changed content: %s", got)
	}
}

func TestTrackLinks(t *testing.T) {
	signer := crypto.NewLinkSigner("secret", "http://api.test")
	unsubscribe := "http://api.test/api/newsletter/unsubscribe/tok"
	content := `<html><body>` +
		`<a href="https://example.com/report">report</a>` +
		`<a href="mailto:security@example.com">mail</a>` +
		`<a href="#top">top</a>` +
		`<a href="` + unsubscribe + `">unsubscribe</a>` +
		`</body></html>`

	out, err := TrackLinks(content, "camp-1", signer, unsubscribe)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if strings.Contains(out, `href="https://example.com/report"`) {
		t.Fatal("external link was not rewritten")
	}
	if !strings.Contains(out, "http://api.test/api/track/click/camp-1?") {
		t.Fatalf("click url missing: %s", out)
	}
	for _, kept := range []string{"mailto:security@example.com", `href="#top"`, unsubscribe} {
		if !strings.Contains(out, kept) {
			t.Errorf("%s should be left alone", kept)
		}
	}
	if !strings.Contains(out, `src="http://api.test/api/track/open/camp-1"`) {
		t.Fatalf("open pixel missing: %s", out)
	}
}

func TestTrackedLinkResolves(t *testing.T) {
	signer := crypto.NewLinkSigner("secret", "http://api.test")
	out, err := TrackLinks(`<a href="https://example.com/a?b=c">x</a>`, "camp-2", signer)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	start := strings.Index(out, "http://api.test/api/track/click/")
	end := strings.Index(out[start:], `"`)
	link := strings.ReplaceAll(out[start:start+end], "&amp;", "&")

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	target, err := signer.ResolveClick("camp-2", u.Query().Get("u"), u.Query().Get("s"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if target != "https://example.com/a?b=c" {
		t.Fatalf("target = %q", target)
	}
}

func TestPlainText(t *testing.T) {
	content := `<html><head><title>T</title><style>p{color:red}</style></head><body>
		<h1>Monthly   Brief</h1>
		<p>Read the <a href="https://example.com/r">full report</a>.</p>
		<ul><li>Patch</li><li>Rotate keys</li></ul>
		<p>Line one<br>Line two</p>
		<script>alert(1)</script>
	</body></html>`

	got, err := PlainText(content)
	if err != nil {
		t.Fatalf("plain text: %v", err)
	}
	for _, want := range []string{
		"Monthly Brief",
		"Read the full report (https://example.com/r).",
		"- Patch",
		"- Rotate keys",
		"Line one\nLine two",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	for _, unwanted := range []string{"alert", "color:red", "\n\n\n"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("unexpected %q in:\n%s", unwanted, got)
		}
	}
}

func TestRenderCampaign(t *testing.T) {
	renderer := NewEmailRenderer(testConfig())
	linkedin := "https://linkedin.com/company/settings"
	settings := &models.Settings{LinkedIn: &linkedin}
	name := "Grace"
	sub := &models.Subscriber{Email: "grace@example.com", Name: &name, Token: "tok-1"}
	campaign := &models.Campaign{
		Base:    models.Base{ID: "camp-9"},
		Subject: "{{month}} update for {{name}}",
		HTMLContent: `<html><body><p>Hi {{name}}</p>{{social_links}}` +
			`<a href="https://example.com/x">x</a><a href="{{unsubscribe_url}}">unsubscribe</a></body></html>`,
		SocialLinks: datatypes.JSONMap{"linkedin": "https://linkedin.com/company/campaign"},
		Attachments: datatypes.JSONSlice[models.Attachment]{{Name: "brief.pdf", URL: "https://cdn.test/b.pdf"}},
	}

	msg, err := renderer.RenderCampaign(campaign, sub, settings, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if msg.Subject != "June update for Grace" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if msg.UnsubscribeURL != "http://api.test/api/newsletter/unsubscribe/tok-1" {
		t.Errorf("unsubscribe = %q", msg.UnsubscribeURL)
	}
	if !strings.Contains(msg.HTML, msg.UnsubscribeURL) {
		t.Error("unsubscribe link must not be tracked")
	}
	if !strings.Contains(msg.HTML, "/api/track/click/") {
		t.Error("campaign link should be tracked")
	}
	if strings.Contains(msg.HTML, "company/settings") {
		t.Error("campaign social links should override settings")
	}
	if !strings.Contains(msg.HTML, "brief.pdf") {
		t.Error("attachments missing")
	}
	if strings.Contains(msg.Text, "/api/track/") || !strings.Contains(msg.Text, "https://example.com/x") {
		t.Errorf("text part should carry the original links: %s", msg.Text)
	}
}

func TestRenderConfirmation(t *testing.T) {
	renderer := NewEmailRenderer(testConfig())
	msg, err := renderer.RenderConfirmation(&models.Subscriber{Email: "new@example.com", Token: "abc"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(msg.HTML, "http://api.test/api/newsletter/confirm/abc") {
		t.Fatalf("confirm link missing: %s", msg.HTML)
	}
	if !strings.Contains(msg.Text, "Hi there") || !strings.Contains(msg.Subject, "CyberSite") {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
