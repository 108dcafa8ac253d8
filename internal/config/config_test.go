package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.local:8000/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("BOOKED_DATES_TTL", "15")
	t.Setenv("VA_POLL_INTERVAL", "2m")
	t.Setenv("WORKER_COUNT", "zero")
	t.Setenv("BACKEND_SERVICE_TOKEN", "svc")

	cfg := Load()

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "http://backend.local:8000", cfg.BackendURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Second, cfg.BookedDatesTTL)
	assert.Equal(t, 2*time.Minute, cfg.VAPollInterval)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, "svc", cfg.BackendToken)
}

func TestLocationFallback(t *testing.T) {
	cfg := Config{TimeZone: "Nowhere/Unknown"}
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, cfg.Location()).Zone()
	assert.Equal(t, 7*60*60, offset)
}
