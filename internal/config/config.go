package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string

	JWTSecret    string
	JWTTTL       time.Duration
	SyncAPIToken string // static bearer token for /api/sync/*

	SupabaseURL       string
	SupabaseSecretKey string // service_role key, not the anon key

	SendinblueAPIKey string // Brevo transactional email; takes precedence over SMTP
	MailFrom         string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	FrontendURL      string // used to build login and reset links in emails

	CORSAllowedOrigins string // origin suffix, e.g. .wealthdesk.in
	DevPassword        string
	HealthAdminKey     string

	StoreTimeout time.Duration
	MailTimeout  time.Duration

	CommissionRate float64
	LogLevel       string
	LogJSON        bool
}

// ErrMissingJWTSecret is returned outside development when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("JWT_TTL", "24h")
	viper.SetDefault("STORE_TIMEOUT", "10s")
	viper.SetDefault("MAIL_TIMEOUT", "10s")
	viper.SetDefault("COMMISSION_RATE", 0.10)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("MAIL_FROM", "noreply@wealthdesk.in")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")

	cfg := &Config{
		Env:                viper.GetString("APP_ENV"),
		Port:               viper.GetString("PORT"),
		DatabaseURL:        viper.GetString("DATABASE_URL"),
		RedisURL:           viper.GetString("REDIS_URL"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		JWTTTL:             viper.GetDuration("JWT_TTL"),
		SyncAPIToken:       viper.GetString("SYNC_API_TOKEN"),
		SupabaseURL:        viper.GetString("SUPABASE_URL"),
		SupabaseSecretKey:  viper.GetString("SUPABASE_SECRET_KEY"),
		SendinblueAPIKey:   viper.GetString("SENDINBLUE_API_KEY"),
		MailFrom:           viper.GetString("MAIL_FROM"),
		SMTPHost:           viper.GetString("SMTP_HOST"),
		SMTPPort:           viper.GetString("SMTP_PORT"),
		SMTPUsername:       viper.GetString("SMTP_USERNAME"),
		SMTPPassword:       viper.GetString("SMTP_PASSWORD"),
		FrontendURL:        strings.TrimRight(viper.GetString("FRONTEND_URL"), "/"),
		CORSAllowedOrigins: viper.GetString("CORS_ALLOWED_ORIGINS"),
		DevPassword:        viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:     viper.GetString("HEALTH_ADMIN_KEY"),
		StoreTimeout:       viper.GetDuration("STORE_TIMEOUT"),
		MailTimeout:        viper.GetDuration("MAIL_TIMEOUT"),
		CommissionRate:     viper.GetFloat64("COMMISSION_RATE"),
		LogLevel:           viper.GetString("LOG_LEVEL"),
		LogJSON:            viper.GetBool("LOG_JSON"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingJWTSecret
		}
		cfg.JWTSecret = "dev-only-secret"
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
