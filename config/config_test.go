package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("BCRYPT_COST", "")
	cfg := Load()

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "user_registration", cfg.MongoCollection)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.False(t, cfg.RequireAuth)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONGODB_DATABASE", "market")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("RATE_LIMIT_LOGIN", "not-a-number")
	cfg := Load()

	assert.Equal(t, "market", cfg.MongoDatabase)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 10, cfg.LoginRateLimit)
}

func TestLoad_BcryptCostFloor(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")
	assert.Equal(t, 10, Load().BcryptCost)
}

func TestSplitList(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test ", ElasticsearchAddrs: ""}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Empty(t, cfg.ESAddrs())
}
