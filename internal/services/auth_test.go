package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"cybersite/internal/models"
	"cybersite/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func addUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{Email: email, Password: string(hashed), FirstName: "Test", Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(db, utils.NewTokenIssuer("test-secret", time.Hour, 24*time.Hour))
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	svc := newAuthService(db)
	addUser(t, db, "admin@example.com", "Secret123", models.UserRoleAdmin)

	if _, err := svc.Login(ctx, "admin@example.com", "wrong", "", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "Secret123", "", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown user: %v", err)
	}

	session, err := svc.Login(ctx, " ADMIN@example.com", "Secret123", "10.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.ExpiresIn != 3600 || session.User.LastLoginAt == nil {
		t.Fatalf("unexpected session: %+v", session)
	}

	claims, err := svc.Authenticate(ctx, session.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.Role != string(models.UserRoleAdmin) || len(claims.Scopes) == 0 {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := svc.Authenticate(ctx, session.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh token used as access token: %v", err)
	}

	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, session.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("revoked session still valid: %v", err)
	}
	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh on revoked session: %v", err)
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	svc := newAuthService(db)
	addUser(t, db, "editor@example.com", "Secret123", models.UserRoleEditor)

	session, err := svc.Login(ctx, "editor@example.com", "Secret123", "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	refreshed, err := svc.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.Authenticate(ctx, refreshed.Token); err != nil {
		t.Fatalf("refreshed token rejected: %v", err)
	}
	if _, err := svc.Refresh(ctx, session.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("access token used as refresh token: %v", err)
	}

	// sessions expire with the refresh token
	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expired session refreshed: %v", err)
	}
}

func TestRevokeAll(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	svc := newAuthService(db)
	user := addUser(t, db, "admin@example.com", "Secret123", models.UserRoleAdmin)
	session, err := svc.Login(ctx, user.Email, "Secret123", "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := db.Create(&models.AuthTransaction{
		UserID: user.ID, Token: "other-device", Refresh: "r", ExpiresAt: time.Now().Add(time.Hour),
	}).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := svc.RevokeAll(ctx, user.ID, session.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	var open int64
	db.Model(&models.AuthTransaction{}).Where("user_id = ? AND revoked = ?", user.ID, false).Count(&open)
	if open != 1 {
		t.Fatalf("open sessions = %d, want only the current one", open)
	}
	if _, err := svc.Authenticate(ctx, session.Token); err != nil {
		t.Fatalf("current session revoked: %v", err)
	}
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	storage := newFakeStorage()
	svc := NewProfileService(db, storage)
	user := addUser(t, db, "me@example.com", "Secret123", models.UserRoleEditor)
	addUser(t, db, "taken@example.com", "Secret123", models.UserRoleEditor)

	if _, err := svc.Update(ctx, user.ID, ProfileUpdate{Email: strPtr("TAKEN@example.com")}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: %v", err)
	}
	updated, err := svc.Update(ctx, user.ID, ProfileUpdate{FirstName: strPtr(" Ada "), Email: strPtr("Ada@Example.com")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Ada" || updated.Email != "ada@example.com" {
		t.Fatalf("profile = %+v", updated)
	}

	first, err := svc.SetImage(ctx, user.ID, []byte("png"), "me.PNG", "image/png")
	if err != nil {
		t.Fatalf("set image: %v", err)
	}
	firstKey := *first.ProfileImageKey
	second, err := svc.SetImage(ctx, user.ID, []byte("png2"), "me2.png", "image/png")
	if err != nil {
		t.Fatalf("replace image: %v", err)
	}
	if *second.ProfileImageKey == firstKey || len(storage.deleted) != 1 || storage.deleted[0] != firstKey {
		t.Fatalf("old image not removed: deleted=%v", storage.deleted)
	}

	removed, err := svc.RemoveImage(ctx, user.ID)
	if err != nil || removed.ProfileImageURL != nil {
		t.Fatalf("remove image: %+v %v", removed, err)
	}
	if len(storage.uploads) != 0 {
		t.Fatalf("uploads left behind: %v", storage.uploads)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	svc := NewProfileService(db, nil)
	user := addUser(t, db, "me@example.com", "Secret123", models.UserRoleEditor)

	tests := []struct {
		name    string
		current string
		next    string
		wantErr error
	}{
		{"wrong current", "nope", "Better456", ErrInvalidInput},
		{"too short", "Secret123", "Ab1", ErrInvalidInput},
		{"weak", "Secret123", "alllowercase", ErrInvalidInput},
		{"ok", "Secret123", "Better456", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.ChangePassword(ctx, user.ID, tt.current, tt.next); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	auth := newAuthService(db)
	if _, err := auth.Login(ctx, user.Email, "Better456", "", ""); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUserManagement(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	svc := NewUserService(db)
	root := addUser(t, db, "root@example.com", "Secret123", models.UserRoleSuperAdmin)

	if _, err := svc.CreateUser(ctx, NewUser{Email: "x@example.com", Password: "weakpassword", FirstName: "X", Role: models.UserRoleEditor}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("weak password: %v", err)
	}
	if _, err := svc.CreateUser(ctx, NewUser{Email: "ROOT@example.com", Password: "Secret123", FirstName: "R", Role: models.UserRoleAdmin}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: %v", err)
	}
	editor, err := svc.CreateUser(ctx, NewUser{Email: "ed@example.com", Password: "Secret123", FirstName: "Ed", Role: models.UserRoleEditor})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if editor.Password == "Secret123" {
		t.Fatal("password stored in clear")
	}

	// the only super admin cannot be demoted or deleted
	if _, err := svc.Update(ctx, root.ID, func(u *models.User) error {
		u.Role = models.UserRoleAdmin
		return nil
	}); !errors.Is(err, ErrConflict) {
		t.Fatalf("demote last super admin: %v", err)
	}
	if err := svc.Delete(ctx, root.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete last super admin: %v", err)
	}

	promoted, err := svc.Update(ctx, editor.ID, func(u *models.User) error {
		u.Role = models.UserRoleSuperAdmin
		u.Password = "overwritten"
		return nil
	})
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Password == "overwritten" {
		t.Fatal("password must not change through user updates")
	}
	if err := svc.Delete(ctx, root.ID); err != nil {
		t.Fatalf("delete with another super admin: %v", err)
	}

	if _, err := svc.Update(ctx, editor.ID, func(u *models.User) error {
		u.Role = "OWNER"
		return nil
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("invalid role: %v", err)
	}
}
