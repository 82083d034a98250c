package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cybersite/internal/models"
	"cybersite/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Session is what a successful login or refresh returns to the admin UI.
type Session struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         *models.User `json:"user"`
}

type AuthService struct {
	db     *gorm.DB
	issuer *utils.TokenIssuer
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, issuer *utils.TokenIssuer) *AuthService {
	return &AuthService{db: db, issuer: issuer, now: time.Now}
}

// Login checks the credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*Session, error) {
	user, err := models.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)), s.db.WithContext(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, err := s.issuer.GenerateJWT(*user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	refresh, err := s.issuer.GenerateRefreshToken(*user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.AuthTransaction{
			UserID:    user.ID,
			Token:     token,
			Refresh:   refresh,
			IPAddress: ip,
			UserAgent: utils.TruncateUserAgent(userAgent),
			ExpiresAt: now.Add(s.issuer.RefreshTTL()),
		}).Error; err != nil {
			return err
		}
		return tx.Model(user).UpdateColumn("last_login_at", now).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	user.LastLoginAt = &now

	return &Session{
		Token:        token,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.issuer.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

// Refresh swaps a valid refresh token for a new access token on the same session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if _, err := s.issuer.ParseRefreshToken(refreshToken); err != nil {
		return nil, ErrUnauthorized
	}

	var session models.AuthTransaction
	if err := s.db.WithContext(ctx).
		Where("refresh = ? AND revoked = ? AND expires_at > ?", refreshToken, false, s.now()).
		First(&session).Error; err != nil {
		return nil, ErrUnauthorized
	}

	user, err := models.GetUserByID(session.UserID, s.db.WithContext(ctx))
	if err != nil {
		return nil, ErrUnauthorized
	}

	token, err := s.issuer.GenerateJWT(*user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&session).Update("token", token).Error; err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &Session{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.issuer.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

// Authenticate validates an access token against its stored session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := s.issuer.ParseJWT(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AuthTransaction{}).
		Where("token = ? AND user_id = ? AND revoked = ? AND expires_at > ?", token, claims.UserID, false, s.now()).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrUnauthorized
	}

	// roles can change while a token is alive
	user, err := models.GetUserByID(claims.UserID, s.db.WithContext(ctx))
	if err != nil {
		return nil, ErrUnauthorized
	}
	claims.Email = user.Email
	claims.Role = string(user.Role)
	claims.Scopes = models.ScopesForRole(user.Role)
	return claims, nil
}

// Logout revokes the session the access token belongs to.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Model(&models.AuthTransaction{}).
		Where("token = ?", token).
		Update("revoked", true).Error
}

// RevokeAll ends every session of a user, e.g. after a password change.
func (s *AuthService) RevokeAll(ctx context.Context, userID string, exceptToken string) error {
	q := s.db.WithContext(ctx).Model(&models.AuthTransaction{}).Where("user_id = ? AND revoked = ?", userID, false)
	if exceptToken != "" {
		q = q.Where("token <> ?", exceptToken)
	}
	return q.Update("revoked", true).Error
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := models.GetUserByID(userID, s.db.WithContext(ctx))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}
