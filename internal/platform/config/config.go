package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Mirror drivers.
const (
	MirrorPostgres = "postgres"
	MirrorSQLite   = "sqlite"
)

// Ledger modes.
const (
	LedgerRelay     = "relay"
	LedgerSimulated = "simulated"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	ServiceName   string
	EnableDBCheck bool

	MirrorDriver string
	DatabaseURL  string
	SQLitePath   string

	JWTSecret string
	JWTIssuer string
	// OperatorAddresses may apply out-of-band ledger receipts over HTTP.
	OperatorAddresses []string

	LedgerMode    string
	LedgerURL     string
	LedgerAPIKey  string
	LedgerTimeout time.Duration

	// DonationCASMaxAttempts bounds compare-and-set retries of the campaign roll-up per donation.
	DonationCASMaxAttempts int
	// ReconcileInterval is the period of the background reconciler; zero disables it.
	ReconcileInterval time.Duration

	RateLimit          string // ulule/limiter format, e.g. "100-M"
	RateLimitRedisURL  string
	CORSAllowedOrigins []string

	OTelEndpoint string
	OTelInsecure bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
// Actual environment variables override .env values, which override the defaults.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("SERVICE_NAME", "fundraising-backend")
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("MIRROR_DRIVER", MirrorPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "fundraising.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "fundraising-app")
	v.SetDefault("OPERATOR_ADDRESSES", "")
	v.SetDefault("LEDGER_MODE", LedgerRelay)
	v.SetDefault("LEDGER_URL", "")
	v.SetDefault("LEDGER_API_KEY", "")
	v.SetDefault("LEDGER_TIMEOUT", "30s")
	v.SetDefault("DONATION_CAS_MAX_ATTEMPTS", 5)
	v.SetDefault("RECONCILE_INTERVAL", "0s")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("RATE_LIMIT_REDIS_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_INSECURE", false)
	v.AutomaticEnv()

	cfg := &Config{
		Port:                   v.GetString("PORT"),
		IsProduction:           v.GetBool("IS_PRODUCTION"),
		ServiceName:            v.GetString("SERVICE_NAME"),
		EnableDBCheck:          v.GetBool("ENABLE_DB_CHECK"),
		MirrorDriver:           strings.ToLower(v.GetString("MIRROR_DRIVER")),
		DatabaseURL:            v.GetString("PGSQL_URL"),
		SQLitePath:             v.GetString("SQLITE_PATH"),
		JWTSecret:              v.GetString("JWT_SECRET"),
		JWTIssuer:              v.GetString("JWT_ISSUER"),
		OperatorAddresses:      splitList(v.GetString("OPERATOR_ADDRESSES")),
		LedgerMode:             strings.ToLower(v.GetString("LEDGER_MODE")),
		LedgerURL:              v.GetString("LEDGER_URL"),
		LedgerAPIKey:           v.GetString("LEDGER_API_KEY"),
		DonationCASMaxAttempts: v.GetInt("DONATION_CAS_MAX_ATTEMPTS"),
		RateLimit:              v.GetString("RATE_LIMIT"),
		RateLimitRedisURL:      v.GetString("RATE_LIMIT_REDIS_URL"),
		CORSAllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		OTelEndpoint:           v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelInsecure:           v.GetBool("OTEL_INSECURE"),
	}

	var err error
	if cfg.LedgerTimeout, err = parseDuration(v, "LEDGER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = parseDuration(v, "RECONCILE_INTERVAL", 0); err != nil {
		return nil, err
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT not set, defaulting", slog.String("port", cfg.Port))
	}
	if cfg.DonationCASMaxAttempts < 1 {
		slog.Warn("DONATION_CAS_MAX_ATTEMPTS must be at least 1, defaulting to 5")
		cfg.DonationCASMaxAttempts = 5
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		slog.Warn("JWT_SECRET not set, using default insecure key")
	}

	switch cfg.MirrorDriver {
	case MirrorPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when MIRROR_DRIVER=%s", MirrorPostgres)
		}
	case MirrorSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required when MIRROR_DRIVER=%s", MirrorSQLite)
		}
	default:
		return nil, fmt.Errorf("unknown MIRROR_DRIVER %q (want %s or %s)", cfg.MirrorDriver, MirrorPostgres, MirrorSQLite)
	}

	switch cfg.LedgerMode {
	case LedgerRelay:
		if cfg.LedgerURL == "" {
			return nil, fmt.Errorf("LEDGER_URL is required when LEDGER_MODE=%s", LedgerRelay)
		}
	case LedgerSimulated:
		if cfg.IsProduction {
			return nil, fmt.Errorf("LEDGER_MODE=%s is not allowed in production", LedgerSimulated)
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_MODE %q (want %s or %s)", cfg.LedgerMode, LedgerRelay, LedgerSimulated)
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
