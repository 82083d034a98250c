package handlers

import (
	"context"

	"cybersite/internal/models"
	"cybersite/internal/services"
)

// Sessions issues and revokes admin sessions.
type Sessions interface {
	Login(ctx context.Context, email, password, ip, userAgent string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	Logout(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID string, exceptToken string) error
	Me(ctx context.Context, userID string) (*models.User, error)
}

// Profiles is the signed-in admin's self-service.
type Profiles interface {
	Update(ctx context.Context, userID string, in services.ProfileUpdate) (*models.User, error)
	SetImage(ctx context.Context, userID string, data []byte, filename, contentType string) (*models.User, error)
	RemoveImage(ctx context.Context, userID string) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// Campaigns covers the campaign operations beyond plain CRUD.
type Campaigns interface {
	Send(ctx context.Context, id string) (int, error)
	RecordOpen(ctx context.Context, id string) error
	RecordClick(ctx context.Context, id string) error
}

// Newsletter is the public subscription flow.
type Newsletter interface {
	Subscribe(ctx context.Context, email string, name *string) (*models.Subscriber, error)
	Confirm(ctx context.Context, token string) (*models.Subscriber, error)
	Unsubscribe(ctx context.Context, token string) (*models.Subscriber, error)
}

// LinkResolver checks signed click-tracking links.
type LinkResolver interface {
	ResolveClick(campaignID, encoded, signature string) (string, error)
}

// SiteSettings reads and writes the settings singleton.
type SiteSettings interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, apply func(*models.Settings) error) (*models.Settings, error)
}
