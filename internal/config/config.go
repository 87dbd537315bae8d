package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	DBMaxConns      int32
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration

	StripeSecretKey    string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	CheckoutCurrency   string

	RedisAddr          string
	CORSAllowedOrigins []string

	OrderPendingTTL time.Duration
	OrderSweepSpec  string
	ServiceFee      decimal.Decimal
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:           httpAddr(),
		DBConnString:       os.Getenv("DB_DSN"),
		DBMaxConns:         int32(envInt("DB_MAX_CONNS", 0)),
		ShutdownTimeout:    envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		RequestTimeout:     envDuration("HTTP_WRITE_TIMEOUT_SECONDS", 30*time.Second),
		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		CheckoutSuccessURL: envOrDefault("CHECKOUT_SUCCESS_URL", "http://localhost:5173/success"),
		CheckoutCancelURL:  envOrDefault("CHECKOUT_CANCEL_URL", "http://localhost:5173/cancel"),
		CheckoutCurrency:   envOrDefault("CHECKOUT_CURRENCY", "usd"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS"),
		OrderPendingTTL:    envDuration("ORDER_PENDING_TTL_SECONDS", 5*time.Minute),
		OrderSweepSpec:     envOrDefault("ORDER_SWEEP_SPEC", "@every 30s"),
		ServiceFee:         envDecimal("SERVICE_FEE", decimal.NewFromInt(2)),
	}
}

// Validate reports configuration the API cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBConnString) == "" {
		return errors.New("DB_DSN is required")
	}
	if c.OrderPendingTTL <= 0 {
		return errors.New("ORDER_PENDING_TTL_SECONDS must be positive")
	}
	return nil
}

// httpAddr prefers HTTP_ADDR and falls back to PORT, defaulting to :4000.
func httpAddr() string {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		return v
	}
	return ":" + envOrDefault("PORT", "4000")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envDecimal(key string, def decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
