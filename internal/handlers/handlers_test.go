package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"cybersite/internal/api/validator"
	"cybersite/internal/models"
	"cybersite/internal/services"
	"cybersite/internal/utils/crypto"
	console "cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

func init() {
	console.SetLevel("error")
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, ve.Fields())
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
	return e
}

type fakeCampaigns struct {
	mu     sync.Mutex
	opens  []string
	clicks []string
}

func (f *fakeCampaigns) Send(context.Context, string) (int, error) { return 0, nil }

func (f *fakeCampaigns) RecordOpen(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "gone" {
		return services.ErrNotFound
	}
	f.opens = append(f.opens, id)
	return nil
}

func (f *fakeCampaigns) RecordClick(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, id)
	return nil
}

func TestTrackingClick(t *testing.T) {
	signer := crypto.NewLinkSigner("secret", "http://api.test")
	signed, err := url.Parse(signer.ClickURL("c1", "https://example.com/report?x=1"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	u, s := signed.Query().Get("u"), signed.Query().Get("s")
	tampered := s[:len(s)-1] + "0"
	if strings.HasSuffix(s, "0") {
		tampered = s[:len(s)-1] + "1"
	}

	tests := []struct {
		name       string
		campaign   string
		query      url.Values
		wantCode   int
		wantTarget string
	}{
		{"signed link", "c1", url.Values{"u": {u}, "s": {s}}, http.StatusFound, "https://example.com/report?x=1"},
		{"tampered signature", "c1", url.Values{"u": {u}, "s": {tampered}}, http.StatusBadRequest, ""},
		{"other campaign", "c2", url.Values{"u": {u}, "s": {s}}, http.StatusBadRequest, ""},
		{"missing params", "c1", url.Values{}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			campaigns := &fakeCampaigns{}
			e := newEcho()
			e.GET("/track/click/:id", NewTrackingHandler(campaigns, signer).Click)

			req := httptest.NewRequest(http.MethodGet, "/track/click/"+tt.campaign+"?"+tt.query.Encode(), nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Header().Get(echo.HeaderLocation); got != tt.wantTarget {
				t.Errorf("location = %q, want %q", got, tt.wantTarget)
			}
			wantClicks := 0
			if tt.wantCode == http.StatusFound {
				wantClicks = 1
			}
			if len(campaigns.clicks) != wantClicks {
				t.Errorf("clicks = %v", campaigns.clicks)
			}
		})
	}
}

func TestTrackingOpenAlwaysServesPixel(t *testing.T) {
	campaigns := &fakeCampaigns{}
	e := newEcho()
	e.GET("/track/open/:id", NewTrackingHandler(campaigns, crypto.NewLinkSigner("secret", "")).Open)

	for _, id := range []string{"c1", "gone"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/track/open/"+id, nil))
		if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != "image/gif" {
			t.Fatalf("%s: code %d type %q", id, rec.Code, rec.Header().Get(echo.HeaderContentType))
		}
		if !bytes.Equal(rec.Body.Bytes(), pixel) {
			t.Errorf("%s: body is not the pixel", id)
		}
	}
	if len(campaigns.opens) != 1 || campaigns.opens[0] != "c1" {
		t.Errorf("opens = %v", campaigns.opens)
	}
}

type fakeStorage struct {
	prefix  string
	deleted []string
}

func (f *fakeStorage) Upload(_ context.Context, _ []byte, filename, _, prefix string) (*services.StoredObject, error) {
	f.prefix = prefix
	key := prefix + "/" + filename
	return &services.StoredObject{Key: key, URL: "https://cdn.test/" + key}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func multipartBody(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(content)
	_ = w.Close()
	return body, w.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	pdf := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("a"), 100)...)
	exe := append([]byte("MZ\x90\x00\x03\x00\x00\x00"), bytes.Repeat([]byte{0}, 100)...)
	notes := []byte("Scope of the external perimeter test\nTesting window is the weekend\n")

	tests := []struct {
		name        string
		storage     services.Storage
		filename    string
		contentType string
		content     []byte
		wantCode    int
		wantType    string
	}{
		{"pdf", &fakeStorage{}, "report.pdf", "application/pdf", pdf, http.StatusCreated, "application/pdf"},
		{"no declared type", &fakeStorage{}, "brief.pdf", "", pdf, http.StatusCreated, "application/pdf"},
		{"plain text", &fakeStorage{}, "notes.txt", "text/plain", notes, http.StatusCreated, "text/plain"},
		{"declared type is not trusted", &fakeStorage{}, "invoice.pdf", "application/pdf", exe, http.StatusBadRequest, ""},
		{"too large", &fakeStorage{}, "big.pdf", "application/pdf", bytes.Repeat(pdf, 20), http.StatusBadRequest, ""},
		{"no storage", nil, "report.pdf", "application/pdf", pdf, http.StatusServiceUnavailable, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			e.POST("/upload", NewUploadHandler(tt.storage, 1024).UploadFile)

			body, ct := multipartBody(t, tt.filename, tt.contentType, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set(echo.HeaderContentType, ct)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				return
			}
			var resp struct {
				Attachment models.Attachment `json:"attachment"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Attachment.ID == "" || resp.Attachment.Key != "attachments/"+tt.filename || resp.Attachment.Size != int64(len(tt.content)) {
				t.Errorf("attachment = %+v", resp.Attachment)
			}
			if resp.Attachment.Type != tt.wantType {
				t.Errorf("type = %q, want %q", resp.Attachment.Type, tt.wantType)
			}
		})
	}
}

func TestUploadRequiresMultipart(t *testing.T) {
	e := newEcho()
	e.POST("/upload", NewUploadHandler(&fakeStorage{}, 1024).UploadFile)
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestDeleteFile(t *testing.T) {
	tests := []struct {
		body     string
		wantCode int
	}{
		{`{"key":"attachments/report.pdf"}`, http.StatusNoContent},
		{`{"key":"../secrets"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		storage := &fakeStorage{}
		e := newEcho()
		e.DELETE("/upload", NewUploadHandler(storage, 1024).DeleteFile)
		req := httptest.NewRequest(http.MethodDelete, "/upload", strings.NewReader(tt.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tt.wantCode {
			t.Errorf("%s: code = %d, want %d", tt.body, rec.Code, tt.wantCode)
		}
		if tt.wantCode == http.StatusNoContent && len(storage.deleted) != 1 {
			t.Errorf("deleted = %v", storage.deleted)
		}
	}
}

type fakeNewsletter struct {
	subs map[string]*models.Subscriber
}

func (f *fakeNewsletter) Subscribe(_ context.Context, email string, name *string) (*models.Subscriber, error) {
	sub := &models.Subscriber{Email: email, Name: name, Status: models.SubscriberStatusPending, Token: "tok"}
	f.subs[sub.Token] = sub
	return sub, nil
}

func (f *fakeNewsletter) transition(token string, status models.SubscriberStatus) (*models.Subscriber, error) {
	sub, ok := f.subs[token]
	if !ok {
		return nil, services.ErrNotFound
	}
	sub.Status = status
	return sub, nil
}

func (f *fakeNewsletter) Confirm(_ context.Context, token string) (*models.Subscriber, error) {
	return f.transition(token, models.SubscriberStatusConfirmed)
}

func (f *fakeNewsletter) Unsubscribe(_ context.Context, token string) (*models.Subscriber, error) {
	return f.transition(token, models.SubscriberStatusUnsubscribed)
}

func TestNewsletterLinks(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		accept       string
		wantCode     int
		wantLocation string
	}{
		{"browser confirm", http.MethodGet, "/confirm/tok", "text/html", http.StatusFound, "http://site.test/?newsletter=confirmed"},
		{"api confirm", http.MethodGet, "/confirm/tok", echo.MIMEApplicationJSON, http.StatusOK, ""},
		{"one-click unsubscribe", http.MethodPost, "/unsubscribe/tok", "", http.StatusOK, ""},
		{"browser unsubscribe", http.MethodGet, "/unsubscribe/tok", "", http.StatusFound, "http://site.test/?newsletter=unsubscribed"},
		{"unknown token", http.MethodGet, "/confirm/nope", "text/html", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newsletter := &fakeNewsletter{subs: map[string]*models.Subscriber{
				"tok": {Email: "a@example.com", Status: models.SubscriberStatusPending, Token: "tok"},
			}}
			h := NewNewsletterHandler(newsletter, "http://site.test/")
			e := newEcho()
			e.GET("/confirm/:token", h.Confirm)
			e.GET("/unsubscribe/:token", h.Unsubscribe)
			e.POST("/unsubscribe/:token", h.Unsubscribe)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set(echo.HeaderAccept, tt.accept)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Header().Get(echo.HeaderLocation); got != tt.wantLocation {
				t.Errorf("location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}

func TestSubscribeValidates(t *testing.T) {
	tests := []struct {
		body     string
		wantCode int
	}{
		{`{"email":" Reader@Example.com "}`, http.StatusAccepted},
		{`{"email":"not-an-email"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		newsletter := &fakeNewsletter{subs: map[string]*models.Subscriber{}}
		e := newEcho()
		e.POST("/subscribe", NewNewsletterHandler(newsletter, "").Subscribe)

		req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(tt.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tt.wantCode {
			t.Errorf("%s: code = %d, want %d", tt.body, rec.Code, tt.wantCode)
		}
		if tt.wantCode == http.StatusAccepted && newsletter.subs["tok"].Email != "reader@example.com" {
			t.Errorf("email not normalised: %q", newsletter.subs["tok"].Email)
		}
	}
}
