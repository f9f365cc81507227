package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppEnv string // "development" or "production"
	Port   string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Object storage (S3-compatible, Cloudflare R2 in production)
	R2Endpoint        string
	R2AccessKey       string
	R2SecretAccessKey string
	R2Region          string
	R2Bucket          string

	// Presigned read URL cache
	URLCacheTTL  time.Duration
	URLCacheSize int
	CacheURL     string // Optional: redis://host:port/db shares the cache between instances

	// Abuse protection
	TrustedProxies        []string // IPs or CIDRs allowed to set X-Forwarded-For
	AuthThrottleIntervals []time.Duration
	APIRatePerSec         float64
	APIRateBurst          int

	// Sessions and invites
	SessionExpiry time.Duration
	InviteExpiry  time.Duration

	// Gallery
	GalleryMaxPhotos int

	// Observability (optional)
	SentryDSN   string
	MetricsPath string
}

// Load reads the server config. Missing required variables exit the process.
func Load() *Config {
	cfg := load()
	cfg.R2AccessKey = envRequired("R2_ACCESS_KEY")
	cfg.R2SecretAccessKey = envRequired("R2_SECRET_ACCESS_KEY")
	return cfg
}

// LoadCLI reads the config for maintenance commands, which never touch
// object storage.
func LoadCLI() *Config {
	return load()
}

func load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	appEnv := envRequired("APP_ENV")

	cfg := &Config{
		AppEnv: appEnv,
		Port:   envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/ours.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		R2Endpoint:        envString("R2_ENDPOINT", ""), // Optional: empty means AWS S3
		R2AccessKey:       envString("R2_ACCESS_KEY", ""),
		R2SecretAccessKey: envString("R2_SECRET_ACCESS_KEY", ""),
		R2Region:          envString("R2_REGION", "auto"),
		R2Bucket:          envString("R2_BUCKET", "images-"+appEnv),

		URLCacheTTL:  envDuration("URL_CACHE_TTL", 300*time.Second),
		URLCacheSize: envInt("URL_CACHE_SIZE", 1000),
		CacheURL:     envString("CACHE_URL", ""),

		TrustedProxies:        envList("TRUSTED_PROXIES"),
		AuthThrottleIntervals: envDurations("AUTH_THROTTLE_INTERVALS", []time.Duration{
			1 * time.Second, 5 * time.Second, 20 * time.Second, 1 * time.Minute, 5 * time.Minute,
		}),
		APIRatePerSec: envFloat("API_RATE_PER_SEC", 20),
		APIRateBurst:  envInt("API_RATE_BURST", 40),

		SessionExpiry: envDuration("SESSION_EXPIRY", 30*24*time.Hour),
		InviteExpiry:  envDuration("INVITE_EXPIRY", 7*24*time.Hour),

		GalleryMaxPhotos: envInt("GALLERY_MAX_PHOTOS", 10),

		SentryDSN:   envString("SENTRY_DSN", ""),
		MetricsPath: envString("METRICS_PATH", "/metrics"),
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config invalid float, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList splits a comma separated list, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envDurations parses a comma separated list such as "1s,5s,20s".
func envDurations(key string, def []time.Duration) []time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	var out []time.Duration
	for _, part := range strings.Split(v, ",") {
		d, err := time.ParseDuration(strings.TrimSpace(part))
		if err != nil {
			slog.Warn("config invalid duration list, using default", "key", key, "value", v)
			return def
		}
		out = append(out, d)
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SecureCookies reports whether cookies should carry the Secure flag.
// Overridable for local HTTPS setups.
func (c *Config) SecureCookies() bool {
	return envBool("SECURE_COOKIES", c.IsProduction())
}
