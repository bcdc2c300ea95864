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

type DBConfig struct {
	Driver          string // postgres | sqlite
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // minutes
	SlowQuery       time.Duration
}

type PushConfig struct {
	Provider    string // fcm | noop
	Endpoint    string
	ProjectID   string
	AccessToken string
	Timeout     time.Duration
}

type DispatchConfig struct {
	Workers   int
	QueueSize int
}

type LogConfig struct {
	Level  string
	Format string // text | json
}

type Config struct {
	DB       DBConfig
	Push     PushConfig
	Dispatch DispatchConfig
	Log      LogConfig

	HTTPAddr  string
	GRPCAddr  string
	JWTSecret string

	// Max future PENDING appointments a customer may hold before create is rejected.
	MaxPendingBookings int64
	BusinessLocation   *time.Location
}

// Load reads an optional .env file and then the process environment.
// Every missing or malformed key is reported in one error.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	l := &loader{}
	cfg := &Config{
		DB: DBConfig{
			Driver:          l.getEnv("DB_DRIVER", "postgres"),
			Host:            l.getEnv("DB_HOST", "postgres"),
			User:            l.getEnv("DB_USER", "salon"),
			Password:        l.getEnv("DB_PASSWORD", "salon"),
			Name:            l.getEnv("DB_NAME", "salon_db"),
			SSLMode:         l.getEnv("DB_SSLMODE", "disable"),
			TimeZone:        l.getEnv("DB_TIMEZONE", "UTC"),
			SQLitePath:      l.getEnv("DB_SQLITE_PATH", "salon.db"),
			Port:            l.getEnvInt("DB_PORT", 5432),
			MaxOpenConns:    l.getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    l.getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifeTime: l.getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
			SlowQuery:       time.Duration(l.getEnvInt("DB_SLOW_QUERY_MS", 200)) * time.Millisecond,
		},
		Push: PushConfig{
			Provider:    strings.ToLower(l.getEnv("PUSH_PROVIDER", "noop")),
			Endpoint:    l.getEnv("PUSH_ENDPOINT", "https://fcm.googleapis.com"),
			ProjectID:   l.getEnv("PUSH_PROJECT_ID", ""),
			AccessToken: l.getEnv("PUSH_ACCESS_TOKEN", ""),
			Timeout:     l.getEnvDuration("PUSH_TIMEOUT", 5*time.Second),
		},
		Dispatch: DispatchConfig{
			Workers:   l.getEnvInt("DISPATCH_WORKERS", 4),
			QueueSize: l.getEnvInt("DISPATCH_QUEUE_SIZE", 256),
		},
		Log: LogConfig{
			Level:  l.getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(l.getEnv("LOG_FORMAT", "text")),
		},
		HTTPAddr:           l.getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:           l.getEnv("GRPC_ADDR", ":50051"),
		JWTSecret:          l.require("JWT_SECRET"),
		MaxPendingBookings: l.getEnvInt64("BOOKING_MAX_PENDING", 3),
	}

	tz := l.getEnv("BUSINESS_TIMEZONE", "Asia/Ho_Chi_Minh")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		l.fail("BUSINESS_TIMEZONE", "unknown time zone %q", tz)
	}
	cfg.BusinessLocation = loc

	switch cfg.DB.Driver {
	case "postgres":
		if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
			l.fail("DB_HOST", "host/user/name must not be empty")
		}
	case "sqlite":
		if cfg.DB.SQLitePath == "" {
			l.fail("DB_SQLITE_PATH", "must not be empty")
		}
	default:
		l.fail("DB_DRIVER", "unsupported driver %q", cfg.DB.Driver)
	}

	switch cfg.Push.Provider {
	case "noop":
	case "fcm":
		if cfg.Push.ProjectID == "" {
			l.fail("PUSH_PROJECT_ID", "required when PUSH_PROVIDER=fcm")
		}
	default:
		l.fail("PUSH_PROVIDER", "unsupported provider %q", cfg.Push.Provider)
	}

	if cfg.Dispatch.Workers <= 0 {
		l.fail("DISPATCH_WORKERS", "must be positive")
	}
	if cfg.Dispatch.QueueSize <= 0 {
		l.fail("DISPATCH_QUEUE_SIZE", "must be positive")
	}
	if cfg.MaxPendingBookings <= 0 {
		l.fail("BOOKING_MAX_PENDING", "must be positive")
	}

	if err := l.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type loader struct {
	errs []error
}

func (l *loader) fail(key, format string, args ...any) {
	l.errs = append(l.errs, fmt.Errorf("%s: %s", key, fmt.Sprintf(format, args...)))
}

func (l *loader) err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %w", errors.Join(l.errs...))
}

func (l *loader) require(key string) string {
	v := l.getEnv(key, "")
	if v == "" {
		l.fail(key, "is required")
	}
	return v
}

func (l *loader) getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (l *loader) getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		l.fail(key, "not an integer: %q", v)
		return def
	}
	return i
}

func (l *loader) getEnvInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		l.fail(key, "not an integer: %q", v)
		return def
	}
	return i
}

func (l *loader) getEnvDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail(key, "not a duration: %q", v)
		return def
	}
	return d
}
