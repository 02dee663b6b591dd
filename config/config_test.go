package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SESSION_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.local", cfg.DB.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Hour, cfg.Store.SessionTTL)
	assert.Equal(t, "postgres", cfg.Store.CartBackend)
}

func TestLoadRejectsRedisCartsWithoutAddr(t *testing.T) {
	t.Setenv("CART_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfigURL(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5433/d?sslmode=disable", c.URL())
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=d sslmode=disable", c.DSN())
}
