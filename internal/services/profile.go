package services

import (
	"context"
	"fmt"
	"strings"

	"cybersite/internal/models"
	"cybersite/internal/utils"
	"cybersite/internal/utils/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileUpdate struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=80"`
	LastName  *string `json:"lastName" validate:"omitempty,max=80"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

// ProfileService is the signed-in admin's self-service.
type ProfileService struct {
	db      *gorm.DB
	storage Storage
	logger  *logger.Logger
}

func NewProfileService(db *gorm.DB, storage Storage) *ProfileService {
	return &ProfileService{db: db, storage: storage, logger: logger.New("PROFILE")}
}

func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	user, err := models.GetUserByID(userID, s.db.WithContext(ctx))
	if err != nil {
		return nil, translate(err)
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.User{}).
				Where("email = ? AND id <> ?", email, user.ID).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, fmt.Errorf("%w: email is already in use", ErrConflict)
			}
			user.Email = email
		}
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// SetImage uploads a new profile image and removes the previous one.
func (s *ProfileService) SetImage(ctx context.Context, userID string, data []byte, filename, contentType string) (*models.User, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	user, err := models.GetUserByID(userID, s.db.WithContext(ctx))
	if err != nil {
		return nil, translate(err)
	}

	obj, err := s.storage.Upload(ctx, data, filename, contentType, "profiles")
	if err != nil {
		return nil, err
	}
	previous := user.ProfileImageKey
	user.ProfileImageURL = &obj.URL
	user.ProfileImageKey = &obj.Key
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, translate(err)
	}
	s.deleteQuietly(ctx, previous)
	return user, nil
}

func (s *ProfileService) RemoveImage(ctx context.Context, userID string) (*models.User, error) {
	user, err := models.GetUserByID(userID, s.db.WithContext(ctx))
	if err != nil {
		return nil, translate(err)
	}
	previous := user.ProfileImageKey
	user.ProfileImageURL = nil
	user.ProfileImageKey = nil
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, translate(err)
	}
	s.deleteQuietly(ctx, previous)
	return user, nil
}

func (s *ProfileService) deleteQuietly(ctx context.Context, key *string) {
	if key == nil || *key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, *key); err != nil {
		s.logger.Warn("Failed to delete old profile image %s: %v", *key, err)
	}
}

// ChangePassword replaces the password after checking the current one.
func (s *ProfileService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := models.GetUserByID(userID, s.db.WithContext(ctx))
	if err != nil {
		return translate(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrInvalidInput)
	}
	if len(next) < 8 || !utils.IsStrongPassword(next) {
		return fmt.Errorf("%w: password needs 8+ characters with upper, lower case and a digit", ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(user).Update("password", string(hashed)).Error
}
