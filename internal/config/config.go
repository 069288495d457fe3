// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Media backends.
const (
	MediaLocal = "local"
	MediaS3    = "s3"
)

// SMTPConfig holds outgoing mail settings. An empty Host selects the log transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// MediaConfig selects where decoded screenshots are written.
type MediaConfig struct {
	Backend string
	Dir     string
	Prefix  string
	Naming  string
	Bucket  string
}

// AWSConfig is shared by the S3 media backend and the SQS relay.
type AWSConfig struct {
	Region      string
	EndpointURL string
	QueueURL    string
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr           string
	AllowedOrigins []string
	LogLevel       string
	DatabaseURL    string

	SessionSecret string
	AuthRequired  bool
	JWTIssuer     string

	SiteName   string
	AdminEmail string
	MailFrom   string
	SMTP       SMTPConfig

	Media MediaConfig
	AWS   AWSConfig

	RateLimitPerMinute int
	RedisAddr          string

	ThemeName       string
	ThemeStylesheet string
	SiteLanguage    string
	AjaxURL         string
	LoadOnBackend   bool
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	smtpPort, err := intOrDefault("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	rate, err := intOrDefault("RATE_LIMIT_PER_MINUTE", 10)
	if err != nil {
		return nil, err
	}
	smtpTimeout, err := durationOrDefault("SMTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	frontendURL := envOrDefault("FRONTEND_URL", "http://localhost:4321")
	siteName := envOrDefault("SITE_NAME", "Website")

	cfg := &Config{
		Addr:           envOrDefault("HTTP_ADDR", ":8080"),
		AllowedOrigins: parseList("API_ALLOWED_ORIGINS", []string{frontendURL}),
		LogLevel:       envOrDefault("LOG_LEVEL", "INFO"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),

		SessionSecret: envOrDefault("SESSION_SECRET", "dev-secret-change-in-production-32bytes"),
		AuthRequired:  parseBool("AUTH_REQUIRED"),
		JWTIssuer:     envOrDefault("AUTH_JWT_ISSUER", "user-feedback"),

		SiteName:   siteName,
		AdminEmail: strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		MailFrom:   strings.TrimSpace(os.Getenv("MAIL_FROM")),
		SMTP: SMTPConfig{
			Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			Timeout:  smtpTimeout,
		},

		Media: MediaConfig{
			Backend: strings.ToLower(envOrDefault("MEDIA_BACKEND", MediaLocal)),
			Dir:     envOrDefault("MEDIA_DIR", os.TempDir()),
			Prefix:  envOrDefault("MEDIA_PREFIX", "feedback-"),
			Naming:  strings.ToLower(envOrDefault("MEDIA_NAMING", "unique")),
			Bucket:  strings.TrimSpace(os.Getenv("IMAGES_BUCKET")),
		},
		AWS: AWSConfig{
			Region:      envOrDefault("AWS_REGION", "us-east-1"),
			EndpointURL: strings.TrimSpace(os.Getenv("AWS_ENDPOINT_URL")),
			QueueURL:    strings.TrimSpace(os.Getenv("FEEDBACK_QUEUE_URL")),
		},

		RateLimitPerMinute: rate,
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),

		ThemeName:       strings.TrimSpace(os.Getenv("THEME_NAME")),
		ThemeStylesheet: strings.TrimSpace(os.Getenv("THEME_STYLESHEET")),
		SiteLanguage:    envOrDefault("SITE_LANGUAGE", "en-US"),
		AjaxURL:         envOrDefault("AJAX_URL", "/api/feedback"),
		LoadOnBackend:   parseBool("LOAD_ON_BACKEND"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Media.Backend {
	case MediaLocal:
	case MediaS3:
		if c.Media.Bucket == "" {
			errs = append(errs, errors.New("IMAGES_BUCKET is required when MEDIA_BACKEND=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("MEDIA_BACKEND must be %q or %q, got %q", MediaLocal, MediaS3, c.Media.Backend))
	}
	if c.Media.Naming != "unique" && c.Media.Naming != "minute" {
		errs = append(errs, fmt.Errorf("MEDIA_NAMING must be \"unique\" or \"minute\", got %q", c.Media.Naming))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	if c.SMTP.Host != "" && c.MailFrom == "" {
		errs = append(errs, errors.New("MAIL_FROM is required when SMTP_HOST is set"))
	}
	if c.AuthRequired && len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes when AUTH_REQUIRED=true"))
	}
	return errors.Join(errs...)
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseBool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}

func intOrDefault(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
