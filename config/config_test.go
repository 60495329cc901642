package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	raw := `
http:
  address: ":8080"
database:
  host: "db"
  port: 5432
  user: "app"
  password: "secret"
  name: "flightapp"
  ssl_mode: "disable"
redis:
  addr: "redis:6379"
kafka:
  brokers:
    - "kafka:9092"
  booking_events_topic: "booking-events"
  group_id: "notification-worker"
  heartbeat_seconds: 3
  session_timeout_seconds: 30
booking:
  search_cache_ttl_seconds: 120
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=flightapp sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30, cfg.Kafka.SessionTimeoutSeconds)
	assert.Equal(t, 120, cfg.Booking.SearchCacheTTLSeconds)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
