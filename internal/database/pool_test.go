package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDefaultPoolConfig(t *testing.T) {
	config := DefaultPoolConfig()

	assert.Equal(t, DriverPostgres, config.Driver)
	assert.Equal(t, 25, config.MaxOpenConns)
	assert.Equal(t, 10, config.MaxIdleConns)
	assert.Equal(t, time.Hour, config.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, config.ConnMaxIdleTime)
	assert.Equal(t, logger.Info, config.LogLevel)
	assert.Empty(t, config.DSN)
}

func TestNewDatabasePool_WithNilConfig(t *testing.T) {
	_, err := NewDatabasePool(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN")
}

func TestNewDatabasePool_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		config *PoolConfig
	}{
		{
			name:   "empty dsn",
			config: &PoolConfig{Driver: DriverSQLite, LogLevel: logger.Silent},
		},
		{
			name: "negative limits",
			config: &PoolConfig{
				Driver:       DriverSQLite,
				DSN:          "file::memory:",
				MaxOpenConns: -1,
				MaxIdleConns: -1,
				LogLevel:     logger.Silent,
			},
		},
		{
			name: "negative lifetime",
			config: &PoolConfig{
				Driver:          DriverSQLite,
				DSN:             "file::memory:",
				ConnMaxLifetime: -time.Hour,
				LogLevel:        logger.Silent,
			},
		},
		{
			name:   "unknown driver",
			config: &PoolConfig{Driver: "oracle", DSN: "x", LogLevel: logger.Silent},
		},
		{
			name:   "unreachable postgres",
			config: &PoolConfig{DSN: "invalid://connection:string", LogLevel: logger.Silent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDatabasePool(tt.config)
			assert.Error(t, err)
		})
	}
}

func TestNewDatabasePool_SQLiteMigrates(t *testing.T) {
	pool, err := NewDatabasePool(&PoolConfig{
		Driver:       DriverSQLite,
		DSN:          "file:pool_test?mode=memory&cache=shared",
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, pool.Migrate())
	assert.NoError(t, pool.Health())

	for _, table := range []string{"users", "tasks", "task_team", "sub_tasks", "activities", "notices", "notice_recipients", "groups", "group_members", "tokens"} {
		assert.True(t, pool.DB.Migrator().HasTable(table), table)
	}

	stats := pool.Stats()
	assert.Equal(t, 1, stats["max_open_connections"])
	assert.NotContains(t, stats, "error")
}

func TestDatabasePool_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{config: &PoolConfig{MaxOpenConns: 10}}

	assert.NotPanics(t, func() {
		stats := pool.Stats()
		assert.Contains(t, stats, "error")
	})
	assert.Error(t, pool.Health())
	assert.Error(t, pool.Migrate())
	assert.NoError(t, pool.Close())
}

func BenchmarkDefaultPoolConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DefaultPoolConfig()
	}
}
