// Package config loads application configuration from environment variables.
package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required variables are enforced by must();
// optional ones carry sensible defaults.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	ResendAPIKey  string // Resend API key; empty disables email delivery
	MailFrom      string // sender shown on invitation emails
	PublicBaseURL string // public base URL used for links inside emails

	QRCacheMaxEntries int           // bound on the in-process QR image cache
	QRCacheTTL        time.Duration // TTL for QR images in the Redis tier
}

// Load reads configuration from the environment. Missing required
// variables abort startup with a fatal log entry.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         envStr("DB_PASS", ""), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		ResendAPIKey:  envStr("RESEND_API_KEY", ""),
		MailFrom:      envStr("MAIL_FROM", "El Escándalo <onboarding@resend.dev>"),
		PublicBaseURL: envStr("PUBLIC_BASE_URL", "http://localhost:8080"),

		QRCacheMaxEntries: envInt("QR_CACHE_MAX_ENTRIES", 512),
		QRCacheTTL:        envDur("QR_CACHE_TTL", time.Hour),
	}
}

// must retrieves a required environment variable or aborts startup.
func must(key string) string {
	v := envStr(key, "")
	if v == "" {
		logrus.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but requires an integer value.
func mustInt(key string) int {
	s := must(key)
	n, ok := parseInt(s)
	if !ok {
		logrus.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
