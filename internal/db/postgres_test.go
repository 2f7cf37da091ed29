package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/educareway/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5433"
	cfg.Database.User = "edu"
	cfg.Database.Password = "secret"
	cfg.Database.DBName = "educareway"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxOpenConns = 8
	cfg.Database.MaxIdleConns = 2
	cfg.Database.ConnMaxLifetime = "30m"
	return cfg
}

func TestPoolConfig(t *testing.T) {
	pc, err := poolConfig(testConfig())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "educareway", pc.ConnConfig.Database)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, 30*time.Minute, pc.MaxConnLifetime)
	assert.NotNil(t, pc.BeforeAcquire)
}

func TestPoolConfigClampsMinConns(t *testing.T) {
	cfg := testConfig()
	cfg.Database.MaxIdleConns = 20

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, pc.MaxConns, pc.MinConns)
}

func TestPoolConfigBadLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.Database.ConnMaxLifetime = "forever"

	_, err := poolConfig(cfg)
	assert.ErrorContains(t, err, "max lifetime")
}
