package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the API server and supporting services.
type Config struct {
	ListenAddr              string
	LogLevel                string
	MySQLDSN                string
	RequestTimeout          time.Duration
	Timezone                *time.Location
	JWTSecret               string
	JWTTTL                  time.Duration
	UsageStore              string
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	FrontendURL             string
	StripeSecretKey         string
	StripeWebhookSecret     string
	StripePriceStandard     string
	StripePricePremium      string
	PaymentCurrency         string
	StandardPriceMinorUnits int
	PremiumPriceMinorUnits  int
	TelegramBotToken        string
	TelegramChannelID       int64
	S3Endpoint              string
	S3Region                string
	S3AccessKey             string
	S3SecretKey             string
	S3Bucket                string
	S3PublicBaseURL         string
	S3UsePathStyle          bool
	S3Prefix                string
}

// Load reads configuration from environment variables, applying sane defaults.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Local"))
	if err != nil {
		return Config{}, fmt.Errorf("load timezone: %w", err)
	}

	cfg := Config{
		ListenAddr:              getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		RequestTimeout:          time.Second * time.Duration(getInt("HTTP_TIMEOUT_SECONDS", 15)),
		Timezone:                loc,
		JWTTTL:                  time.Hour * time.Duration(getInt("JWT_TTL_HOURS", 24*7)),
		UsageStore:              strings.ToLower(getEnv("USAGE_STORE", "mysql")),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getInt("REDIS_DB", 0),
		FrontendURL:             strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		StripeSecretKey:         os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:     os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceStandard:     os.Getenv("STRIPE_PRICE_STANDARD"),
		StripePricePremium:      os.Getenv("STRIPE_PRICE_PREMIUM"),
		PaymentCurrency:         strings.ToLower(getEnv("PAYMENT_CURRENCY", "jpy")),
		StandardPriceMinorUnits: getInt("STANDARD_PRICE_MINOR_UNITS", 980),
		PremiumPriceMinorUnits:  getInt("PREMIUM_PRICE_MINOR_UNITS", 1980),
		TelegramBotToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChannelID:       getInt64("TELEGRAM_CHANNEL_ID", 0),
		S3Endpoint:              getEnv("S3_ENDPOINT", ""),
		S3Region:                os.Getenv("S3_REGION"),
		S3AccessKey:             os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:             os.Getenv("S3_SECRET_KEY"),
		S3Bucket:                os.Getenv("S3_BUCKET"),
		S3PublicBaseURL:         os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle:          getBool("S3_USE_PATH_STYLE", false),
		S3Prefix:                getEnv("S3_PREFIX", "articles"),
	}

	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")

	var missing []string
	if cfg.MySQLDSN == "" {
		missing = append(missing, "MYSQL_DSN")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.UsageStore == "redis" && cfg.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if cfg.StripeSecretKey != "" && cfg.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %v", missing)
	}
	if cfg.UsageStore != "mysql" && cfg.UsageStore != "redis" {
		return Config{}, fmt.Errorf("unsupported USAGE_STORE %q", cfg.UsageStore)
	}

	return cfg, nil
}

// BillingEnabled reports whether Stripe credentials are configured.
func (c Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

// StorageEnabled reports whether article cover uploads can be served.
func (c Config) StorageEnabled() bool {
	return c.S3Bucket != "" && c.S3Region != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3PublicBaseURL != ""
}

// NotificationsEnabled reports whether article announcements go to Telegram.
func (c Config) NotificationsEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChannelID != 0
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// loadEnvFile overlays the first env file found. Running without one is fine:
// containers usually pass everything through the environment.
func loadEnvFile() error {
	candidates := []string{}
	if custom, ok := os.LookupEnv("CONFIG_ENV_PATH"); ok && custom != "" {
		candidates = append(candidates, custom)
	}
	candidates = append(candidates,
		filepath.Join("configs", ".env"),
		".env",
	)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("access env file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Overload(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	return nil
}
