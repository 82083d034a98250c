package config

import "time"

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8081,
			PublicURL:      "http://api.test",
			AllowedOrigins: []string{"http://localhost:3000"},
			RequestTimeout: 5 * time.Second,
			BodyLimit:      "12M",
			RateLimit:      1000,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "cybersite_test",
			User:     "test_user",
			Password: "test_password",
		},
		JWT: JWTConfig{
			Secret:          "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Provider:      "s3",
			MaxUploadSize: 10 << 20,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
		Mail: MailConfig{
			Host:     "localhost",
			Port:     1025,
			From:     "newsletter@example.com",
			FromName: "Test",
		},
		Site: SiteConfig{
			Name: "CyberSite",
			URL:  "http://site.test",
		},
		Campaign: CampaignConfig{
			RecurringSpec: "0 9 * * *",
			SendRate:      60,
			SendWindow:    time.Minute,
		},
		Tracking: TrackingConfig{
			Secret: "tracking-secret",
		},
	}
}
