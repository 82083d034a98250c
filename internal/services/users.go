package services

import (
	"context"
	"fmt"
	"strings"

	"cybersite/internal/models"
	"cybersite/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type NewUser struct {
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=8"`
	FirstName string          `json:"firstName" validate:"required,max=80"`
	LastName  string          `json:"lastName" validate:"max=80"`
	Role      models.UserRole `json:"role" validate:"required,user_role"`
}

// UserService lets super admins manage admin accounts.
type UserService struct {
	*BaseServiceImpl[models.User]
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	s := &UserService{db: db}
	s.BaseServiceImpl = NewBaseService(db, models.User{}, UserListSpec(), Hooks[models.User]{
		BeforeUpdate: func(_ context.Context, tx *gorm.DB, current, next *models.User) error {
			next.Password = current.Password
			next.Email = strings.ToLower(strings.TrimSpace(next.Email))
			if !models.IsValidUserRole(next.Role) {
				return fmt.Errorf("%w: invalid role %q", ErrInvalidInput, next.Role)
			}
			if current.Role == models.UserRoleSuperAdmin && next.Role != models.UserRoleSuperAdmin {
				return s.ensureAnotherSuperAdmin(tx, current.ID)
			}
			return nil
		},
		BeforeDelete: func(_ context.Context, tx *gorm.DB, current *models.User) error {
			if err := tx.Where("user_id = ?", current.ID).Delete(&models.AuthTransaction{}).Error; err != nil {
				return err
			}
			if current.Role == models.UserRoleSuperAdmin {
				return s.ensureAnotherSuperAdmin(tx, current.ID)
			}
			return nil
		},
	})
	return s
}

func (s *UserService) ensureAnotherSuperAdmin(tx *gorm.DB, userID string) error {
	var count int64
	if err := tx.Model(&models.User{}).
		Where("role = ? AND id <> ?", models.UserRoleSuperAdmin, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: at least one super admin must remain", ErrConflict)
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	if !utils.IsStrongPassword(in.Password) {
		return nil, fmt.Errorf("%w: password needs upper, lower case and a digit", ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      in.Role,
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email is already in use", ErrConflict)
	}
	if err := s.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
