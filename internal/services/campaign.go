package services

import (
	"context"
	"fmt"
	"time"

	"cybersite/internal/events"
	"cybersite/internal/metrics"
	"cybersite/internal/models"
	"cybersite/internal/utils/logger"

	"gorm.io/gorm"
)

// Dispatcher hands emails to the background workers.
type Dispatcher interface {
	EnqueueCampaignEmail(ctx context.Context, campaignID, subscriberID string) error
	EnqueueConfirmationEmail(ctx context.Context, subscriberID string) error
}

type CampaignService struct {
	*BaseServiceImpl[models.Campaign]
	db         *gorm.DB
	dispatcher Dispatcher
	now        func() time.Time
	logger     *logger.Logger
}

func NewCampaignService(db *gorm.DB, dispatcher Dispatcher) *CampaignService {
	s := &CampaignService{
		db:         db,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger.New("CAMPAIGNS"),
	}
	s.BaseServiceImpl = NewBaseService(db, models.Campaign{}, CampaignListSpec(), Hooks[models.Campaign]{
		BeforeCreate: s.beforeCreate,
		BeforeUpdate: s.beforeUpdate,
		BeforeDelete: s.beforeDelete,
	})
	return s
}

// SetClock replaces the time source, for tests.
func (s *CampaignService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CampaignService) beforeCreate(_ context.Context, _ *gorm.DB, c *models.Campaign) error {
	if c.Status != models.CampaignStatusDraft && c.Status != models.CampaignStatusScheduled {
		return fmt.Errorf("%w: new campaigns must be draft or scheduled", ErrInvalidTransition)
	}
	c.RecipientsCount, c.SentCount, c.OpenCount, c.ClickCount, c.BounceCount = 0, 0, 0, 0, 0
	c.SentAt, c.LastSentAt = nil, nil
	return nil
}

// beforeUpdate only lets draft and scheduled campaigns change, and only
// along the transition table. Sending is reserved for Send and the scheduler.
func (s *CampaignService) beforeUpdate(_ context.Context, _ *gorm.DB, current, next *models.Campaign) error {
	if !current.IsEditable() {
		return fmt.Errorf("%w: campaign is %s", ErrCampaignLocked, current.Status)
	}
	if next.Status != current.Status {
		if next.Status == models.CampaignStatusSending || next.Status == models.CampaignStatusSent {
			return fmt.Errorf("%w: use send to deliver a campaign", ErrInvalidTransition)
		}
		if !models.IsValidCampaignTransition(current.Status, next.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next.Status)
		}
	}
	next.RecipientsCount = current.RecipientsCount
	next.SentCount = current.SentCount
	next.OpenCount = current.OpenCount
	next.ClickCount = current.ClickCount
	next.BounceCount = current.BounceCount
	next.SentAt = current.SentAt
	next.LastSentAt = current.LastSentAt
	return nil
}

func (s *CampaignService) beforeDelete(_ context.Context, _ *gorm.DB, current *models.Campaign) error {
	if current.Status == models.CampaignStatusSending {
		return fmt.Errorf("%w: campaign is being sent", ErrCampaignLocked)
	}
	return nil
}

func (s *CampaignService) confirmedSubscriberIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Subscriber{}).
		Where("status = ?", models.SubscriberStatusConfirmed).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// enqueue queues one email per subscriber and returns how many were accepted.
func (s *CampaignService) enqueue(ctx context.Context, c *models.Campaign, subscriberIDs []string) int {
	queued := 0
	for _, id := range subscriberIDs {
		if err := s.dispatcher.EnqueueCampaignEmail(ctx, c.ID, id); err != nil {
			s.logger.Warn("Failed to enqueue campaign %s for subscriber %s: %v", c.ID, id, err)
			continue
		}
		queued++
	}
	metrics.EmailsQueued.WithLabelValues(string(c.Type)).Add(float64(queued))
	return queued
}

// Send delivers a draft campaign to every confirmed subscriber and returns
// the number of emails queued. The campaign passes through sending and ends
// sent; when nothing could be queued it goes back to draft.
func (s *CampaignService) Send(ctx context.Context, id string) (int, error) {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if campaign.Status != models.CampaignStatusDraft {
		return 0, ErrCampaignNotDraft
	}
	return s.deliver(ctx, campaign, models.CampaignStatusDraft)
}

// deliver returns a campaign that queued nothing to the status it came from,
// so a scheduled campaign is picked up again by the next sweep.
func (s *CampaignService) deliver(ctx context.Context, campaign *models.Campaign, from models.CampaignStatus) (int, error) {
	subscriberIDs, err := s.confirmedSubscriberIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(subscriberIDs) == 0 {
		return 0, ErrNoSubscribers
	}

	// claim the campaign; a concurrent sender loses here
	res := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND status = ?", campaign.ID, from).
		Update("status", models.CampaignStatusSending)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrCampaignNotDraft
	}

	queued := s.enqueue(ctx, campaign, subscriberIDs)
	if queued == 0 {
		if err := s.db.WithContext(ctx).Model(&models.Campaign{}).
			Where("id = ?", campaign.ID).
			Update("status", from).Error; err != nil {
			return 0, s.logger.Error("Failed to return campaign %s to %s", err, campaign.ID, from)
		}
		return 0, ErrNothingEnqueued
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", campaign.ID).
		Updates(map[string]interface{}{
			"status":           models.CampaignStatusSent,
			"sent_at":          now,
			"last_sent_at":     now,
			"recipients_count": len(subscriberIDs),
			"sent_count":       queued,
		}).Error; err != nil {
		return queued, s.logger.Error("Failed to mark campaign %s as sent", err, campaign.ID)
	}

	campaign.Status = models.CampaignStatusSent
	campaign.SentAt, campaign.LastSentAt = &now, &now
	campaign.RecipientsCount, campaign.SentCount = len(subscriberIDs), queued
	events.Emit(events.CampaignSent, campaign)

	s.logger.Success("Campaign %s queued for %d subscribers", campaign.ID, queued)
	return queued, nil
}

// DispatchReport summarises one run of the periodic campaign job.
type DispatchReport struct {
	Recurring int `json:"recurring"`
	Scheduled int `json:"scheduled"`
	Emails    int `json:"emails"`
}

// DispatchDue sends monthly campaigns due today and scheduled campaigns
// whose time has come. Failures of one campaign do not stop the others.
func (s *CampaignService) DispatchDue(ctx context.Context) (*DispatchReport, error) {
	now := s.now()
	report := &DispatchReport{}

	var monthly []models.Campaign
	if err := s.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", models.CampaignTypeMonthly, true).
		Find(&monthly).Error; err != nil {
		return nil, err
	}
	for i := range monthly {
		c := &monthly[i]
		if !c.DueForRecurringSend(now) {
			continue
		}
		n, err := s.sendRecurring(ctx, c, now)
		if err != nil {
			s.logger.Warn("Recurring campaign %s not sent: %v", c.ID, err)
			continue
		}
		if n == 0 {
			continue
		}
		report.Recurring++
		report.Emails += n
	}

	var scheduled []models.Campaign
	if err := s.db.WithContext(ctx).
		Where("status = ? AND type = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?",
			models.CampaignStatusScheduled, models.CampaignTypeOneTime, now).
		Find(&scheduled).Error; err != nil {
		return nil, err
	}
	for i := range scheduled {
		c := &scheduled[i]
		n, err := s.deliver(ctx, c, models.CampaignStatusScheduled)
		if err != nil {
			s.logger.Warn("Scheduled campaign %s not sent: %v", c.ID, err)
			continue
		}
		report.Scheduled++
		report.Emails += n
	}

	return report, nil
}

// sendRecurring queues a monthly campaign without touching its status.
func (s *CampaignService) sendRecurring(ctx context.Context, c *models.Campaign, now time.Time) (int, error) {
	subscriberIDs, err := s.confirmedSubscriberIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(subscriberIDs) == 0 {
		return 0, ErrNoSubscribers
	}

	// last_sent_at guards against a second run in the same month
	res := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND (last_sent_at IS NULL OR last_sent_at < ?)", c.ID, monthStart(now)).
		Update("last_sent_at", now)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}

	queued := s.enqueue(ctx, c, subscriberIDs)
	if queued == 0 {
		// release the month so the next run tries again
		if err := s.db.WithContext(ctx).Model(&models.Campaign{}).
			Where("id = ?", c.ID).
			Update("last_sent_at", c.LastSentAt).Error; err != nil {
			return 0, s.logger.Error("Failed to restore last send of campaign %s", err, c.ID)
		}
		return 0, ErrNothingEnqueued
	}
	if err := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"sent_at":          now,
			"recipients_count": gorm.Expr("recipients_count + ?", len(subscriberIDs)),
			"sent_count":       gorm.Expr("sent_count + ?", queued),
		}).Error; err != nil {
		return queued, err
	}
	return queued, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SendWelcome queues every active welcome campaign for a newly confirmed subscriber.
func (s *CampaignService) SendWelcome(ctx context.Context, subscriberID string) (int, error) {
	var sub models.Subscriber
	if err := s.db.WithContext(ctx).First(&sub, "id = ?", subscriberID).Error; err != nil {
		return 0, translate(err)
	}
	if sub.Status != models.SubscriberStatusConfirmed {
		return 0, nil
	}

	var welcome []models.Campaign
	if err := s.db.WithContext(ctx).
		Where("type = ? AND is_active = ? AND status <> ?", models.CampaignTypeWelcome, true, models.CampaignStatusCancelled).
		Find(&welcome).Error; err != nil {
		return 0, err
	}

	total := 0
	for i := range welcome {
		c := &welcome[i]
		if s.enqueue(ctx, c, []string{sub.ID}) == 0 {
			continue
		}
		total++
		if err := s.db.WithContext(ctx).Model(&models.Campaign{}).
			Where("id = ?", c.ID).
			Updates(map[string]interface{}{
				"last_sent_at":     s.now(),
				"recipients_count": gorm.Expr("recipients_count + 1"),
				"sent_count":       gorm.Expr("sent_count + 1"),
			}).Error; err != nil {
			s.logger.Warn("Failed to update counters of welcome campaign %s: %v", c.ID, err)
		}
	}
	return total, nil
}

// ListenForSubscribers sends welcome campaigns when a subscription is confirmed.
func (s *CampaignService) ListenForSubscribers() {
	events.On(events.SubscriberConfirmed, func(data interface{}) {
		sub, ok := data.(*models.Subscriber)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.SendWelcome(ctx, sub.ID); err != nil {
			s.logger.Warn("Welcome campaigns for %s failed: %v", sub.Email, err)
		}
	})
}

func (s *CampaignService) increment(ctx context.Context, id, column string) error {
	res := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CampaignService) RecordOpen(ctx context.Context, id string) error {
	return s.increment(ctx, id, "open_count")
}

func (s *CampaignService) RecordClick(ctx context.Context, id string) error {
	return s.increment(ctx, id, "click_count")
}
