package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
http:
  address: ":8080"
database:
  host: db
  user: app
  password: secret
  name: flights
auth:
  jwt_secret: "0123456789abcdef0123456789abcdef"
reservation:
  max_attempts: 5
kafka:
  brokers: ["kafka:9092"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5, cfg.Reservation.MaxAttempts)
	assert.Equal(t, 25*time.Millisecond, cfg.Reservation.RetryBackoff())
	assert.Equal(t, 2*time.Second, cfg.Reservation.LockTimeout())
	assert.Equal(t, 10, cfg.Throttle.Requests)
	assert.Equal(t, time.Minute, cfg.Throttle.Window())
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "no-reply@skyreserve.local", cfg.Email.From)
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=flights sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_HOST", "pg.internal")
	t.Setenv("DATABASE_PORT", "6432")
	t.Setenv("PORT", "4000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("EMAIL_FROM", "bookings@example.com")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, ":4000", cfg.HTTP.Address)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "bookings@example.com", cfg.Email.From)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Setenv("DATABASE_PORT", "abc")

	_, err := LoadConfig(writeConfig(t, sampleYAML))
	assert.ErrorContains(t, err, "DATABASE_PORT")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "short"
	cfg.Reservation.MaxAttempts = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host is required")
	assert.Contains(t, err.Error(), "jwt_secret must be at least 32 characters")
	assert.Contains(t, err.Error(), "max_attempts must be at least 1")
}

func validConfig() *Config {
	cfg := Default()
	cfg.Database.Host = "db"
	cfg.Database.Name = "flights"
	cfg.Database.User = "app"
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	return cfg
}

func TestValidate_LockTimeoutMustBeBounded(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	for _, ms := range []int{0, -5} {
		cfg := validConfig()
		cfg.Reservation.LockTimeoutMS = ms

		err := cfg.Validate()
		require.Error(t, err, "lock_timeout_ms=%d", ms)
		assert.Contains(t, err.Error(), "lock_timeout_ms must be at least 1")
	}

	cfg := validConfig()
	cfg.Reservation.RetryBackoffMS = -1
	assert.ErrorContains(t, cfg.Validate(), "retry_backoff_ms must not be negative")
}

func TestAuthConfig_TokenTTL(t *testing.T) {
	testCases := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "1d", want: 24 * time.Hour},
		{raw: "7d", want: 7 * 24 * time.Hour},
		{raw: "90m", want: 90 * time.Minute},
		{raw: "xd", wantErr: true},
		{raw: "soon", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := AuthConfig{JWTExpiration: tc.raw}.TokenTTL()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
