package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PostgresRequiresPassword(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

func TestLoad_SQLiteTrainingMode(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/sim.db")
	t.Setenv("VALIDATION_PARALLEL", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/sim.db", cfg.Database.DSN())
	assert.False(t, cfg.Validation.Parallel)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "local", cfg.Storage.Type)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.CORS.AllowedHeaders, "X-Trainee-ID")
	assert.Equal(t, "/api/reports", cfg.Storage.LocalPublicURL)
	assert.Equal(t, 20, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
}

func TestLoad_Pagination(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PAGE_SIZE_DEFAULT", "10")
	t.Setenv("PAGE_SIZE_MAX", "40")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, PaginationConfig{DefaultLimit: 10, MaxLimit: 40}, cfg.Pagination)

	t.Setenv("PAGE_SIZE_MAX", "5")
	_, err = Load()
	assert.ErrorContains(t, err, "PAGE_SIZE_MAX")

	t.Setenv("PAGE_SIZE_DEFAULT", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "PAGE_SIZE_DEFAULT")
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "SERVER_PORT")
}

func TestValidate_Unsupported(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "mysql"},
		Storage:  StorageConfig{Type: "local"},
	}
	assert.ErrorContains(t, cfg.Validate(), "DB_DRIVER")

	cfg.Database = DatabaseConfig{Driver: DriverSQLite, SQLitePath: "x.db"}
	cfg.Storage.Type = "ftp"
	assert.ErrorContains(t, cfg.Validate(), "STORAGE_TYPE")
}

func TestDatabaseConfig_PostgresDSN(t *testing.T) {
	c := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     5432,
		Username: "sim",
		Password: "p@ss word",
		Name:     "tradesim",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://sim:p%40ss%20word@db:5432/tradesim?sslmode=disable", c.DSN())
}
