package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo/internal/config"
)

func testConfig(url string) config.DatabaseConfig {
	return config.DatabaseConfig{
		URL:             url,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   time.Second,
	}
}

func TestCreateAndDropSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "todos.db")
	url := "sqlite:" + path

	created, err := Create(ctx, url)
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)

	created, err = Create(ctx, url)
	require.NoError(t, err)
	assert.False(t, created, "second create is a no-op")

	dropped, err := Drop(ctx, url)
	require.NoError(t, err)
	assert.True(t, dropped)
	assert.NoFileExists(t, path)

	dropped, err = Drop(ctx, url)
	require.NoError(t, err)
	assert.False(t, dropped)
}

func TestCreateSQLiteRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "todos.db"), 0o755))

	_, err := Create(context.Background(), "sqlite:"+filepath.Join(dir, "todos.db"))
	assert.Error(t, err)
}

func TestNewRequiresExistingSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := New(context.Background(), testConfig("sqlite:"+path), zerolog.Nop())
	assert.ErrorIs(t, err, ErrDatabaseNotFound)
	assert.NoFileExists(t, path)
}

func TestNewUnsupportedURL(t *testing.T) {
	_, err := New(context.Background(), testConfig("mysql://localhost/todos"), zerolog.Nop())
	assert.ErrorIs(t, err, ErrUnsupportedURL)
}

func TestServiceHealth(t *testing.T) {
	ctx := context.Background()
	url := "sqlite:" + filepath.Join(t.TempDir(), "todos.db")
	_, err := Create(ctx, url)
	require.NoError(t, err)

	svc, err := New(ctx, testConfig(url), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, DialectSQLite, svc.Dialect())
	assert.NotNil(t, svc.GetDB())

	stats := svc.Health()
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, DialectSQLite, stats["dialect"])
	assert.Contains(t, stats, "open_connections")

	require.NoError(t, svc.Close())

	stats = svc.Health()
	assert.Equal(t, "down", stats["status"])
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	url := "sqlite:" + filepath.Join(t.TempDir(), "todos.db")
	_, err := Create(ctx, url)
	require.NoError(t, err)

	svc, err := New(ctx, testConfig(url), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	before, err := MigrationStatus(ctx, svc, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, before, 2)
	for _, m := range before {
		assert.False(t, m.Applied, m.Name)
	}

	result, err := Migrate(ctx, svc, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.From)
	assert.Equal(t, int64(2), result.To)
	assert.Equal(t, []string{"00001_create_todos.sql", "00002_add_todo_assigned.sql"}, result.Applied)
	assert.False(t, result.UpToDate())

	again, err := Migrate(ctx, svc, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, again.UpToDate())
	assert.Equal(t, int64(2), again.From)
	assert.Equal(t, int64(2), again.To)

	after, err := MigrationStatus(ctx, svc, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, int64(1), after[0].Version)
	assert.Equal(t, "00001_create_todos.sql", after[0].Name)
	for _, m := range after {
		assert.True(t, m.Applied, m.Name)
	}

	migrator := svc.GetDB().Migrator()
	assert.True(t, migrator.HasTable("todos"))
	for _, column := range []string{"id", "title", "notes", "assigned", "completed", "created_at", "updated_at"} {
		assert.True(t, migrator.HasColumn("todos", column), column)
	}
	assert.True(t, migrator.HasIndex("todos", "idx_todos_completed"))
}
