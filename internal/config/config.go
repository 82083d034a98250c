package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Redis      RedisConfig
	Mail       MailConfig
	Site       SiteConfig
	Campaign   CampaignConfig
	SuperAdmin SuperAdminConfig
	Tracking   TrackingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	PublicURL      string
	AllowedOrigins []string
	RequestTimeout time.Duration
	BodyLimit      string
	RateLimit      float64
	// FormRateMax posts per client IP are accepted by public forms in each FormRateWindow.
	FormRateMax    int
	FormRateWindow time.Duration
	// AdminPanel mounts the generated table browser under /panel.
	AdminPanel bool
	// TrustedProxies are CIDRs whose X-Forwarded-For is believed. Empty means
	// the client IP is the socket peer.
	TrustedProxies []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxOpen  int
	MaxIdle  int
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type StorageConfig struct {
	Provider      string // s3 or none
	MaxUploadSize int64
	S3            S3Config
}

type S3Config struct {
	BucketName string `env:"S3_BUCKET_NAME" required:"true"`
	Endpoint   string `env:"S3_ENDPOINT"`
	Region     string `env:"S3_REGION" required:"true"`
	AccessKey  string `env:"S3_ACCESS_KEY" required:"true"`
	SecretKey  string `env:"S3_SECRET_KEY" required:"true"`
	PublicURL  string `env:"S3_PUBLIC_URL"`
}

type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

type RedisConfig struct {
	Addr     string
	Password string
	Username string
	DB       int
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type SiteConfig struct {
	Name string
	URL  string
}

type CampaignConfig struct {
	// RecurringSpec is the cron spec of the job dispatching monthly and scheduled campaigns.
	RecurringSpec string
	// SendRate caps emails sent per SendWindow across all workers.
	SendRate   int
	SendWindow time.Duration
}

type SuperAdminConfig struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type TrackingConfig struct {
	Secret string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "localhost"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			PublicURL:      getEnv("PUBLIC_URL", "http://localhost:8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			BodyLimit:      getEnv("SERVER_BODY_LIMIT", "12M"),
			RateLimit:      float64(getEnvAsInt("SERVER_RATE_LIMIT", 20)),
			FormRateMax:    getEnvAsInt("FORM_RATE_MAX", 5),
			FormRateWindow: getEnvAsDuration("FORM_RATE_WINDOW", 10*time.Minute),
			AdminPanel:     getEnv("ADMIN_PANEL_ENABLED", "true") == "true",
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Name:     getEnv("POSTGRES_DB", "cybersite"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpen:  getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdle:  getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenTTL:  getEnvAsDuration("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTokenTTL: getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Storage: StorageConfig{
			Provider:      getEnv("STORAGE_PROVIDER", "s3"),
			MaxUploadSize: int64(getEnvAsInt("STORAGE_MAX_UPLOAD_MB", 10)) << 20,
			S3: S3Config{
				BucketName: getEnv("S3_BUCKET_NAME", ""),
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				Region:     getEnv("S3_REGION", ""),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
				PublicURL:  getEnv("S3_PUBLIC_URL", ""),
			},
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 5),
			QueueSize:   getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
		Redis: RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), getEnvAsInt("REDIS_PORT", 6379)),
			Password: getEnv("REDIS_PASSWORD", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "newsletter@localhost"),
			FromName: getEnv("MAIL_FROM_NAME", "Newsletter"),
		},
		Site: SiteConfig{
			Name: getEnv("SITE_NAME", "CyberSite"),
			URL:  strings.TrimRight(getEnv("SITE_URL", "http://localhost:3000"), "/"),
		},
		Campaign: CampaignConfig{
			RecurringSpec: getEnv("CAMPAIGN_RECURRING_CRON", "0 9 * * *"),
			SendRate:      getEnvAsInt("CAMPAIGN_SEND_RATE", 60),
			SendWindow:    getEnvAsDuration("CAMPAIGN_SEND_WINDOW", time.Minute),
		},
		SuperAdmin: SuperAdminConfig{
			Email:     getEnv("SUPERADMIN_EMAIL", ""),
			Password:  getEnv("SUPERADMIN_PASSWORD", ""),
			FirstName: getEnv("SUPERADMIN_NAME", "Admin"),
			LastName:  getEnv("SUPERADMIN_LAST_NAME", ""),
		},
		Tracking: TrackingConfig{
			Secret: getEnv("TRACKING_SECRET", getEnv("JWT_SECRET", "your-secret-key")),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}

	return cfg, nil
}

// APIURL is the public base URL of this API, without a trailing slash.
func (c *Config) APIURL() string {
	return strings.TrimRight(c.Server.PublicURL, "/")
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
