package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidInput      = errors.New("invalid input")
	ErrCampaignNotDraft  = errors.New("only draft campaigns can be sent")
	ErrCampaignLocked    = errors.New("campaign can no longer be edited")
	ErrInvalidTransition = errors.New("invalid campaign status transition")
	ErrNoSubscribers     = errors.New("no confirmed subscribers")
	ErrNothingEnqueued   = errors.New("no emails could be queued")
	ErrUnauthorized      = errors.New("invalid credentials")
	ErrForbidden         = errors.New("forbidden")
	ErrDeliverySkipped   = errors.New("delivery skipped")
)

// translate maps gorm errors onto the service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: duplicate value", ErrConflict)
	}
	return err
}
