package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cybersite/internal/config"
	"cybersite/internal/db/dbtest"
	"cybersite/internal/models"
	console "cybersite/internal/utils/logger"

	"gorm.io/gorm"
)

func init() {
	console.SetLevel("error")
}

type queued struct {
	CampaignID   string
	SubscriberID string
}

type fakeDispatcher struct {
	mu            sync.Mutex
	campaigns     []queued
	confirmations []string
	fail          bool
}

func (f *fakeDispatcher) EnqueueCampaignEmail(_ context.Context, campaignID, subscriberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("redis unavailable")
	}
	f.campaigns = append(f.campaigns, queued{campaignID, subscriberID})
	return nil
}

func (f *fakeDispatcher) EnqueueConfirmationEmail(_ context.Context, subscriberID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("redis unavailable")
	}
	f.confirmations = append(f.confirmations, subscriberID)
	return nil
}

func (f *fakeDispatcher) campaignCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.campaigns)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []*Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeStorage struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, data []byte, filename, _ string, prefix string) (*StoredObject, error) {
	key := ObjectKey(prefix, filename)
	f.uploads[key] = data
	return &StoredObject{Key: key, URL: "https://cdn.test/" + key}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.uploads, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key + "?signed", nil
}

func testConfig() *config.Config {
	return config.LoadTestConfig()
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	models.Normalize(v)
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func addSubscriber(t *testing.T, db *gorm.DB, email string, status models.SubscriberStatus) *models.Subscriber {
	t.Helper()
	sub := &models.Subscriber{Email: email, Status: status}
	mustCreate(t, db, sub)
	return sub
}

func draftCampaign(name string) *models.Campaign {
	return &models.Campaign{
		Name:        name,
		Subject:     "Hello {{name}}",
		HTMLContent: "<html><body><p>Hi {{name}}</p><a href=\"{{unsubscribe_url}}\">unsubscribe</a></body></html>",
		Status:      models.CampaignStatusDraft,
		Type:        models.CampaignTypeOneTime,
	}
}

func openDB(t *testing.T) *gorm.DB {
	return dbtest.Open(t)
}
