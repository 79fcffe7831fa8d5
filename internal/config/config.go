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

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Supabase     SupabaseConfig
	Gate         GateConfig
	Dashboard    DashboardConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MigrationsDir   string
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	PoolSize       int
	TimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
	Service  string
	Env      string
}

// SupabaseConfig describes the hosted auth service and the session cookies it issues.
type SupabaseConfig struct {
	URL                  string
	AnonKey              string
	JWTSecret            string
	TimeoutSeconds       int
	RefreshWindowSeconds int
	AccessCookie         string
	RefreshCookie        string
	CookieDomain         string
	CookiePath           string
	CookieSecure         bool
	CookieSameSite       string
	RefreshCookieMaxAge  int
}

// GateConfig holds the route access policy for page requests.
type GateConfig struct {
	ProtectedRoutes []string
	GuestRoutes     []string
	LoginPath       string
	DefaultPath     string
	RedirectParam   string
	RoutesFile      string
}

// DashboardConfig tunes the dashboard metrics cache.
type DashboardConfig struct {
	CacheTTLSeconds int
}

// NotificationConfig configures outbound delivery of shipment events.
type NotificationConfig struct {
	WebhookURL            string
	WebhookTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "portkey"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             redisDB,
			PoolSize:       getEnvAsInt("REDIS_POOL_SIZE", 10),
			TimeoutSeconds: getEnvAsInt("REDIS_TIMEOUT_SECONDS", 2),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Supabase: SupabaseConfig{
			URL:                  strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			AnonKey:              os.Getenv("SUPABASE_ANON_KEY"),
			JWTSecret:            os.Getenv("SUPABASE_JWT_SECRET"),
			TimeoutSeconds:       getEnvAsInt("SUPABASE_TIMEOUT_SECONDS", 5),
			RefreshWindowSeconds: getEnvAsInt("SUPABASE_REFRESH_WINDOW_SECONDS", 60),
			AccessCookie:         getEnv("SESSION_ACCESS_COOKIE", "sb-access-token"),
			RefreshCookie:        getEnv("SESSION_REFRESH_COOKIE", "sb-refresh-token"),
			CookieDomain:         os.Getenv("SESSION_COOKIE_DOMAIN"),
			CookiePath:           getEnv("SESSION_COOKIE_PATH", "/"),
			CookieSecure:         getEnvAsBool("SESSION_COOKIE_SECURE", true),
			CookieSameSite:       getEnv("SESSION_COOKIE_SAMESITE", "Lax"),
			RefreshCookieMaxAge:  getEnvAsInt("SESSION_REFRESH_COOKIE_MAX_AGE", 60*60*24*30),
		},
		Gate: GateConfig{
			ProtectedRoutes: getEnvAsList("GATE_PROTECTED_ROUTES", []string{"/dashboard", "/shipments", "/status", "/settings", "/admin"}),
			GuestRoutes:     getEnvAsList("GATE_GUEST_ROUTES", []string{"/login", "/register"}),
			LoginPath:       getEnv("GATE_LOGIN_PATH", "/login"),
			DefaultPath:     getEnv("GATE_DEFAULT_PATH", "/dashboard"),
			RedirectParam:   getEnv("GATE_REDIRECT_PARAM", "redirectTo"),
			RoutesFile:      os.Getenv("GATE_ROUTES_FILE"),
		},
		Dashboard: DashboardConfig{
			CacheTTLSeconds: getEnvAsInt("DASHBOARD_CACHE_TTL_SECONDS", 60),
		},
		Notification: NotificationConfig{
			WebhookURL:            os.Getenv("NOTIFICATION_WEBHOOK_URL"),
			WebhookTimeoutSeconds: getEnvAsInt("NOTIFICATION_WEBHOOK_TIMEOUT_SECONDS", 5),
		},
	}

	cfg.Postgres.ApplicationName = cfg.App.Name
	cfg.Logger.Service = cfg.App.Name
	cfg.Logger.Env = cfg.App.Env

	if cfg.Gate.RoutesFile != "" {
		if err := cfg.Gate.loadRoutesFile(cfg.Gate.RoutesFile); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate reports settings the service cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Supabase.URL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.Supabase.AnonKey == "" {
		errs = append(errs, errors.New("SUPABASE_ANON_KEY is required"))
	}
	if !strings.HasPrefix(c.Gate.LoginPath, "/") {
		errs = append(errs, fmt.Errorf("GATE_LOGIN_PATH must be absolute: %q", c.Gate.LoginPath))
	}
	if !strings.HasPrefix(c.Gate.DefaultPath, "/") {
		errs = append(errs, fmt.Errorf("GATE_DEFAULT_PATH must be absolute: %q", c.Gate.DefaultPath))
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds a single call to the auth service.
func (s SupabaseConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// RefreshWindow is how close to expiry an access token may get before it is rotated.
func (s SupabaseConfig) RefreshWindow() time.Duration {
	if s.RefreshWindowSeconds < 0 {
		return 0
	}
	return time.Duration(s.RefreshWindowSeconds) * time.Second
}

// Timeout bounds dialing and each command. The dashboard falls back to
// Postgres when Redis is slow, so this stays short.
func (r RedisConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long dashboard metrics stay cached.
func (d DashboardConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLSeconds) * time.Second
}

// WebhookTimeout bounds a single webhook delivery.
func (n NotificationConfig) WebhookTimeout() time.Duration {
	if n.WebhookTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.WebhookTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return splitList(val)
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
