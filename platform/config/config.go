// Package config loads application configuration from the environment.
// It belongs to the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides bearer token validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// WorkflowConfig provides the business clock used by reminders and
// "today" analytics windows.
type WorkflowConfig interface {
	GetLocation() *time.Location
	GetReminderTime() string
}

// DocumentConfig provides the branding and clock for generated documents.
type DocumentConfig interface {
	GetAgencyName() string
	GetLocation() *time.Location
}

// SchedulerConfig provides settings for the asynq queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetOutboxPollInterval() time.Duration
	GetOutboxBatchSize() int
}

// CalendarConfig provides settings for the calendar collaborator.
type CalendarConfig interface {
	GetCalendarAPIURL() string
	GetCalendarAPIKey() string
	IsCalendarEnabled() bool
}

// PushConfig provides settings for device push delivery.
type PushConfig interface {
	GetPushAPIURL() string
	GetPushAccessToken() string
	IsPushEnabled() bool
}

// ExchangeRateConfig provides settings for USD to INR lookups.
type ExchangeRateConfig interface {
	GetExchangeRateURL() string
	GetExchangeRateTTL() time.Duration
}

// MinIOConfig provides settings for receipt storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketReceipts() string
	IsMinIOEnabled() bool
}

// EmailConfig provides settings for the operations mailbox.
type EmailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFrom() string
	GetOperationsEmail() string
	IsEmailEnabled() bool
}

// WhatsAppConfig provides settings for client feedback messages.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	IsWhatsAppEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	MigrateOnStart  bool
	JWTAccessSecret string
	CORSAllowAll    bool
	CORSOrigins     []string
	CORSAllowCreds  bool

	Timezone     string
	Location     *time.Location
	ReminderTime string
	AgencyName   string

	RedisURL           string
	RedisTLSInsecure   bool
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	SchedulerMetrics   string

	CalendarAPIURL  string
	CalendarAPIKey  string
	PushAPIURL      string
	PushAccessToken string

	ExchangeRateURL string
	ExchangeRateTTL time.Duration

	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	MinIOMaxFileSize    int64
	MinioBucketReceipts string

	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	OperationsEmail string

	WhatsAppURL string
	WhatsAppKey string
}

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetLocation() *time.Location { return c.Location }
func (c *Config) GetReminderTime() string     { return c.ReminderTime }
func (c *Config) GetAgencyName() string       { return c.AgencyName }

func (c *Config) GetRedisURL() string                  { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool            { return c.RedisTLSInsecure }
func (c *Config) GetOutboxPollInterval() time.Duration { return c.OutboxPollInterval }
func (c *Config) GetOutboxBatchSize() int              { return c.OutboxBatchSize }

func (c *Config) GetCalendarAPIURL() string { return c.CalendarAPIURL }
func (c *Config) GetCalendarAPIKey() string { return c.CalendarAPIKey }
func (c *Config) IsCalendarEnabled() bool   { return c.CalendarAPIURL != "" }

func (c *Config) GetPushAPIURL() string      { return c.PushAPIURL }
func (c *Config) GetPushAccessToken() string { return c.PushAccessToken }
func (c *Config) IsPushEnabled() bool        { return c.PushAPIURL != "" }

func (c *Config) GetExchangeRateURL() string        { return c.ExchangeRateURL }
func (c *Config) GetExchangeRateTTL() time.Duration { return c.ExchangeRateTTL }

func (c *Config) GetMinIOEndpoint() string       { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string      { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string      { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool           { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64     { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketReceipts() string { return c.MinioBucketReceipts }
func (c *Config) IsMinIOEnabled() bool           { return c.MinIOEndpoint != "" }

func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetSMTPFrom() string        { return c.SMTPFrom }
func (c *Config) GetOperationsEmail() string { return c.OperationsEmail }
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.OperationsEmail != ""
}

func (c *Config) GetWhatsAppURL() string { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string { return c.WhatsAppKey }
func (c *Config) IsWhatsAppEnabled() bool {
	return c.WhatsAppURL != ""
}

// Load reads configuration from environment variables, with an optional
// .env file in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:8081"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrateOnStart:  strings.EqualFold(getEnv("MIGRATE_ON_START", "true"), "true"),
		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:    corsAllowAll,
		CORSOrigins:     corsOrigins,
		CORSAllowCreds:  strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		Timezone:     getEnv("APP_TIMEZONE", "Asia/Kolkata"),
		ReminderTime: getEnv("REMINDER_TIME", "10:00"),
		AgencyName:   getEnv("AGENCY_NAME", "Travel Desk"),

		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		OutboxPollInterval: mustDuration(getEnv("OUTBOX_POLL_INTERVAL", "5s")),
		OutboxBatchSize:    mustInt(getEnv("OUTBOX_BATCH_SIZE", "50")),
		SchedulerMetrics:   getEnv("SCHEDULER_METRICS_ADDR", ":9091"),

		CalendarAPIURL:  getEnv("CALENDAR_API_URL", ""),
		CalendarAPIKey:  getEnv("CALENDAR_API_KEY", ""),
		PushAPIURL:      getEnv("PUSH_API_URL", ""),
		PushAccessToken: getEnv("PUSH_ACCESS_TOKEN", ""),

		ExchangeRateURL: getEnv("EXCHANGE_RATE_URL", "https://open.er-api.com/v6/latest/USD"),
		ExchangeRateTTL: mustDuration(getEnv("EXCHANGE_RATE_TTL", "6h")),

		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:         strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:    mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketReceipts: getEnv("MINIO_BUCKET_RECEIPTS", "confirmation-receipts"),

		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:        getEnv("SMTP_FROM", ""),
		OperationsEmail: getEnv("OPERATIONS_EMAIL", ""),

		WhatsAppURL: getEnv("WHATSAPP_URL", ""),
		WhatsAppKey: getEnv("WHATSAPP_KEY", ""),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if _, err := time.Parse("15:04", cfg.ReminderTime); err != nil {
		return nil, fmt.Errorf("REMINDER_TIME must be HH:MM, got %q", cfg.ReminderTime)
	}
	if cfg.IsEmailEnabled() && cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
