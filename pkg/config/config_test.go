package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.App.IsDev())
	assert.Equal(t, StoreDriverPostgres, cfg.DB.Driver)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.False(t, cfg.DB.ForceIPv4)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "./docs/swagger.json", cfg.HTTP.SwaggerFile)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Workflow.SupervisorFromPending)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "memory")
	v.Set("DB_PORT", "6543")
	v.Set("DB_AUTO_MIGRATE", "true")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("IDEMPOTENCY_TTL_HOURS", "2")
	v.Set("WORKFLOW_SUPERVISOR_FROM_PENDING", "true")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.DB.Driver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.True(t, cfg.Workflow.SupervisorFromPending)
}

func TestFromViper_Validation(t *testing.T) {
	t.Run("driver desconocido", func(t *testing.T) {
		v := viper.New()
		v.Set("STORE_DRIVER", "sqlite")
		_, err := fromViper(v)
		assert.Error(t, err)
	})

	t.Run("produccion sin JWT_SECRET", func(t *testing.T) {
		v := viper.New()
		v.Set("APP_ENV", "production")
		_, err := fromViper(v)
		assert.Error(t, err)
	})
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "suministros", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/suministros?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
