package services

import (
	"context"
	"errors"
	"testing"

	"cybersite/internal/events"
	"cybersite/internal/models"
)

func TestSubscribeLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	dispatcher := &fakeDispatcher{}
	svc := NewSubscriberService(db, dispatcher)
	events.Reset()
	t.Cleanup(events.Reset)

	sub, err := svc.Subscribe(ctx, "  Reader@Example.com ", strPtr("Reader"))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.Email != "reader@example.com" || sub.Status != models.SubscriberStatusPending || sub.Token == "" {
		t.Fatalf("unexpected subscriber: %+v", sub)
	}
	if len(dispatcher.confirmations) != 1 {
		t.Fatalf("confirmation not queued")
	}

	again, err := svc.Subscribe(ctx, "reader@example.com", nil)
	if err != nil || again.ID != sub.ID {
		t.Fatalf("resubscribe while pending: %+v %v", again, err)
	}

	confirmed, err := svc.Confirm(ctx, sub.Token)
	if err != nil || confirmed.Status != models.SubscriberStatusConfirmed || confirmed.ConfirmedAt == nil {
		t.Fatalf("confirm: %+v %v", confirmed, err)
	}
	if _, err := svc.Confirm(ctx, sub.Token); err != nil {
		t.Fatalf("second confirm: %v", err)
	}

	queued := len(dispatcher.confirmations)
	same, err := svc.Subscribe(ctx, "reader@example.com", nil)
	if err != nil || same.Status != models.SubscriberStatusConfirmed {
		t.Fatalf("subscribe while confirmed: %+v %v", same, err)
	}
	if len(dispatcher.confirmations) != queued {
		t.Fatal("confirmed subscribers get no new confirmation")
	}

	left, err := svc.Unsubscribe(ctx, sub.Token)
	if err != nil || left.Status != models.SubscriberStatusUnsubscribed || left.UnsubscribedAt == nil {
		t.Fatalf("unsubscribe: %+v %v", left, err)
	}

	back, err := svc.Subscribe(ctx, "reader@example.com", nil)
	if err != nil {
		t.Fatalf("subscribe after leaving: %v", err)
	}
	if back.Status != models.SubscriberStatusPending || back.Token == sub.Token || back.UnsubscribedAt != nil {
		t.Fatalf("returning subscriber should start over: %+v", back)
	}
	if _, err := svc.Confirm(ctx, sub.Token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old token still valid: %v", err)
	}
}

func TestSubscribeRejectsBlankEmail(t *testing.T) {
	svc := NewSubscriberService(openDB(t), &fakeDispatcher{})
	if _, err := svc.Subscribe(context.Background(), "  ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestTokenLookups(t *testing.T) {
	svc := NewSubscriberService(openDB(t), &fakeDispatcher{})
	for _, token := range []string{"", "unknown"} {
		if _, err := svc.Unsubscribe(context.Background(), token); !errors.Is(err, ErrNotFound) {
			t.Errorf("token %q: %v", token, err)
		}
	}
}
