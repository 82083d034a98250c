package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cybersite/internal/models"
)

func TestDeliverCampaignEmail(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	mailer := &fakeMailer{}
	delivery := NewDelivery(db, mailer, NewEmailRenderer(testConfig()))

	confirmed := addSubscriber(t, db, "ok@example.com", models.SubscriberStatusConfirmed)
	left := addSubscriber(t, db, "gone@example.com", models.SubscriberStatusUnsubscribed)
	campaign := draftCampaign("news")
	mustCreate(t, db, campaign)
	cancelled := draftCampaign("cancelled")
	cancelled.Status = models.CampaignStatusCancelled
	mustCreate(t, db, cancelled)

	tests := []struct {
		name       string
		campaignID string
		subscriber string
		skipped    bool
	}{
		{"delivered", campaign.ID, confirmed.ID, false},
		{"unsubscribed", campaign.ID, left.ID, true},
		{"missing subscriber", campaign.ID, "nobody", true},
		{"missing campaign", "nothing", confirmed.ID, true},
		{"cancelled campaign", cancelled.ID, confirmed.ID, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := delivery.DeliverCampaignEmail(ctx, tt.campaignID, tt.subscriber)
			if tt.skipped != errors.Is(err, ErrDeliverySkipped) {
				t.Fatalf("err = %v, skipped = %v", err, tt.skipped)
			}
			if !tt.skipped && err != nil {
				t.Fatalf("deliver: %v", err)
			}
		})
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.ToEmail != "ok@example.com" || msg.Subject != "Hello there" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if !strings.Contains(msg.HTML, confirmed.Token) {
		t.Fatal("unsubscribe link should carry the subscriber token")
	}
}

func TestDeliverCampaignEmailMailerError(t *testing.T) {
	db := openDB(t)
	mailer := &fakeMailer{err: errors.New("smtp down")}
	delivery := NewDelivery(db, mailer, NewEmailRenderer(testConfig()))
	sub := addSubscriber(t, db, "ok@example.com", models.SubscriberStatusConfirmed)
	c := draftCampaign("news")
	mustCreate(t, db, c)

	err := delivery.DeliverCampaignEmail(context.Background(), c.ID, sub.ID)
	if err == nil || errors.Is(err, ErrDeliverySkipped) {
		t.Fatalf("mailer failure should be retried, got %v", err)
	}
}

func TestDeliverConfirmation(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	mailer := &fakeMailer{}
	delivery := NewDelivery(db, mailer, NewEmailRenderer(testConfig()))
	pending := addSubscriber(t, db, "new@example.com", models.SubscriberStatusPending)
	confirmed := addSubscriber(t, db, "old@example.com", models.SubscriberStatusConfirmed)

	if err := delivery.DeliverConfirmation(ctx, pending.ID); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if err := delivery.DeliverConfirmation(ctx, confirmed.ID); !errors.Is(err, ErrDeliverySkipped) {
		t.Fatalf("confirmed subscriber: %v", err)
	}
	if len(mailer.sent) != 1 || !strings.Contains(mailer.sent[0].HTML, "/api/newsletter/confirm/"+pending.Token) {
		t.Fatalf("unexpected confirmation: %+v", mailer.sent)
	}
}

func TestRecordBounce(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	delivery := NewDelivery(db, &fakeMailer{}, NewEmailRenderer(testConfig()))
	c := draftCampaign("news")
	mustCreate(t, db, c)

	for i := 0; i < 2; i++ {
		if err := delivery.RecordBounce(ctx, c.ID); err != nil {
			t.Fatalf("bounce: %v", err)
		}
	}
	var stored models.Campaign
	db.First(&stored, "id = ?", c.ID)
	if stored.BounceCount != 2 {
		t.Fatalf("bounceCount = %d", stored.BounceCount)
	}
}
