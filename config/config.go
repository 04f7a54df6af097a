package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	GRPC        GRPCConfig        `yaml:"grpc"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Auth        AuthConfig        `yaml:"auth"`
	Reservation ReservationConfig `yaml:"reservation"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Throttle    ThrottleConfig    `yaml:"throttle"`
	Email       EmailConfig       `yaml:"email"`
	Log         LogConfig         `yaml:"log"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	JWTExpiration string `yaml:"jwt_expiration"`
}

// TokenTTL parses JWTExpiration. Besides Go durations it accepts a day suffix ("1d").
func (a AuthConfig) TokenTTL() (time.Duration, error) {
	raw := strings.TrimSpace(a.JWTExpiration)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid jwt_expiration %q: %w", raw, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid jwt_expiration %q: %w", raw, err)
	}
	return d, nil
}

type ReservationConfig struct {
	MaxAttempts    int `yaml:"max_attempts"`
	RetryBackoffMS int `yaml:"retry_backoff_ms"`
	LockTimeoutMS  int `yaml:"lock_timeout_ms"`
}

func (r ReservationConfig) RetryBackoff() time.Duration {
	return time.Duration(r.RetryBackoffMS) * time.Millisecond
}

func (r ReservationConfig) LockTimeout() time.Duration {
	return time.Duration(r.LockTimeoutMS) * time.Millisecond
}

type CatalogConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

func (c CatalogConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

type ThrottleConfig struct {
	Enabled       bool `yaml:"enabled"`
	Requests      int  `yaml:"requests"`
	WindowSeconds int  `yaml:"window_seconds"`
}

func (t ThrottleConfig) Window() time.Duration {
	return time.Duration(t.WindowSeconds) * time.Second
}

type EmailConfig struct {
	From string `yaml:"from"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Debug bool   `yaml:"debug"`
	Path  string `yaml:"path"`
}

// LoadConfig reads the YAML file at path, applies defaults and then
// environment overrides (an optional .env in the working directory is loaded first).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Address: ":3000"},
		GRPC: GRPCConfig{Address: ":9090"},
		Database: DatabaseConfig{
			Port:     5432,
			SSLMode:  "disable",
			MaxConns: 10,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			BookingTopic:       "booking-events",
			NotificationsTopic: "booking-notifications",
			GroupID:            "skyreserve-worker",
		},
		Auth: AuthConfig{JWTExpiration: "1d"},
		Reservation: ReservationConfig{
			MaxAttempts:    3,
			RetryBackoffMS: 25,
			LockTimeoutMS:  2000,
		},
		Catalog: CatalogConfig{
			CacheTTLSeconds: 30,
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Throttle: ThrottleConfig{
			Enabled:       true,
			Requests:      10,
			WindowSeconds: 60,
		},
		Email: EmailConfig{From: "no-reply@skyreserve.local"},
		Log:   LogConfig{Level: "info"},
	}
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("DATABASE_HOST", &c.Database.Host)
	if err := num("DATABASE_PORT", &c.Database.Port); err != nil {
		return err
	}
	str("DATABASE_USERNAME", &c.Database.User)
	str("DATABASE_PASSWORD", &c.Database.Password)
	str("DATABASE_NAME", &c.Database.Name)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("JWT_EXPIRATION", &c.Auth.JWTExpiration)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("EMAIL_FROM", &c.Email.From)

	if v, ok := lookup("PORT"); ok && v != "" {
		c.HTTP.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.User == "" {
		errs = append(errs, errors.New("database.user is required"))
	}
	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 32 characters"))
	}
	if _, err := c.Auth.TokenTTL(); err != nil {
		errs = append(errs, err)
	}
	if c.Reservation.MaxAttempts < 1 {
		errs = append(errs, errors.New("reservation.max_attempts must be at least 1"))
	}
	if c.Reservation.LockTimeoutMS < 1 {
		errs = append(errs, errors.New("reservation.lock_timeout_ms must be at least 1"))
	}
	if c.Reservation.RetryBackoffMS < 0 {
		errs = append(errs, errors.New("reservation.retry_backoff_ms must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
