package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:todos.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite:todos.db", cfg.Database.URL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.False(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:todos.db")
	t.Setenv("PORT", "3000")
	t.Setenv("TODO_DATABASE_MAX_OPEN_CONNS", "4")
	t.Setenv("TODO_DATABASE_MIGRATE_ON_START", "true")
	t.Setenv("TODO_SERVER_CORS_ORIGINS", "http://localhost:5173")
	t.Setenv("TODO_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.MigrateOnStart)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadPrefixedPortWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:todos.db")
	t.Setenv("PORT", "3000")
	t.Setenv("TODO_SERVER_PORT", "4000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoadOptions(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(WithDatabaseURL("postgres://localhost/todos"), WithLogLevel("DEBUG"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/todos", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("DATABASE_URL", "sqlite:from-env.db")
	cfg, err = Load(WithDatabaseURL(""), WithLogLevel(""))
	require.NoError(t, err)
	assert.Equal(t, "sqlite:from-env.db", cfg.Database.URL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "log level", key: "TODO_LOG_LEVEL", value: "loud"},
		{name: "log format", key: "TODO_LOG_FORMAT", value: "xml"},
		{name: "port", key: "TODO_SERVER_PORT", value: "70000"},
		{name: "pool size", key: "TODO_DATABASE_MAX_OPEN_CONNS", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "sqlite:todos.db")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSectionKey(t *testing.T) {
	assert.Equal(t, "database.max_open_conns", sectionKey("TODO_DATABASE_MAX_OPEN_CONNS"))
	assert.Equal(t, "log.level", sectionKey("TODO_LOG_LEVEL"))
	assert.Equal(t, "", sectionKey("TODO_VERBOSE"))
}
