package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "opc.tcp://localhost:4840", cfg.PLC.Endpoint)
	assert.Equal(t, 3, cfg.PLC.Retries)
	assert.Equal(t, 2*time.Second, cfg.PLC.RetryDelay)
	assert.Equal(t, 5*time.Second, cfg.PLC.RequestTimeout)
	assert.Equal(t, uint16(2), cfg.PLC.Namespace)
	assert.Equal(t, 24*time.Hour, cfg.Backup.Interval)
	assert.Equal(t, "inventory.movements", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("PLC_RETRIES", "5")
	t.Setenv("PLC_RETRY_DELAY", "3")
	t.Setenv("PLC_SYNC_INTERVAL", "0s")
	t.Setenv("BACKUP_INTERVAL", "90m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, 5, cfg.PLC.Retries)
	assert.Equal(t, 3*time.Second, cfg.PLC.RetryDelay)
	assert.Equal(t, time.Duration(0), cfg.PLC.SyncInterval)
	assert.Equal(t, 90*time.Minute, cfg.Backup.Interval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_DotEnvNoPisaElProceso(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_PORT=9191\nAPP_NAME=desde-archivo\n"), 0o600))
	t.Setenv("APP_NAME", "desde-env")
	t.Cleanup(func() { os.Unsetenv("HTTP_PORT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.HTTP.Port)
	assert.Equal(t, "desde-env", cfg.App.Name)
}

func TestLoad_Invalido(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("PLC_RETRIES", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "warehouse", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/warehouse?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
