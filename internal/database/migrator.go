package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/Tomlord1122/todo/internal/logger"
)

// Migrations are embedded per dialect because auto-increment keys and
// timestamp types differ between sqlite and postgres.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// MigrateResult summarises a migrate run.
type MigrateResult struct {
	From    int64    `json:"from"`
	To      int64    `json:"to"`
	Applied []string `json:"applied"`
}

// UpToDate reports whether the run applied nothing.
func (r MigrateResult) UpToDate() bool {
	return len(r.Applied) == 0
}

// MigrationInfo describes one embedded migration and whether it has been
// applied to the connected database.
type MigrationInfo struct {
	Version   int64     `json:"version"`
	Name      string    `json:"name"`
	Applied   bool      `json:"applied"`
	AppliedAt time.Time `json:"applied_at,omitempty"`
}

func gooseDialect(dialect string) (goose.Dialect, error) {
	switch dialect {
	case DialectSQLite:
		return goose.DialectSQLite3, nil
	case DialectPostgres:
		return goose.DialectPostgres, nil
	}
	return "", fmt.Errorf("%w: dialect %q", ErrUnsupportedURL, dialect)
}

func newProvider(svc Service, log zerolog.Logger) (*goose.Provider, error) {
	dialect, err := gooseDialect(svc.Dialect())
	if err != nil {
		return nil, err
	}

	subtree, err := fs.Sub(migrations, "migrations/"+svc.Dialect())
	if err != nil {
		return nil, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	sqlDB, err := svc.GetDB().DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	provider, err := goose.NewProvider(dialect, sqlDB, subtree,
		goose.WithVerbose(log.GetLevel() <= zerolog.DebugLevel),
		goose.WithLogger(logger.NewGooseLogger(log)),
	)
	if err != nil {
		return nil, fmt.Errorf("constructing database migrator: %w", err)
	}
	return provider, nil
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, svc Service, log zerolog.Logger) (MigrateResult, error) {
	provider, err := newProvider(svc, log)
	if err != nil {
		return MigrateResult{}, err
	}

	from, err := provider.GetDBVersion(ctx)
	if err != nil {
		return MigrateResult{}, fmt.Errorf("retrieving current database migration version: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return MigrateResult{}, fmt.Errorf("applying migrations: %w", err)
	}

	result := MigrateResult{From: from, To: from}
	for _, r := range results {
		result.Applied = append(result.Applied, filepath.Base(r.Source.Path))
		if r.Source.Version > result.To {
			result.To = r.Source.Version
		}
	}

	if result.UpToDate() {
		log.Info().Int64("version", result.To).Msg("database schema up to date")
	} else {
		log.Info().Int64("from", result.From).Int64("to", result.To).Msg("migrated database schema")
	}
	return result, nil
}

// MigrationStatus lists the embedded migrations in version order.
func MigrationStatus(ctx context.Context, svc Service, log zerolog.Logger) ([]MigrationInfo, error) {
	provider, err := newProvider(svc, log)
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieving migration status: %w", err)
	}

	infos := make([]MigrationInfo, 0, len(statuses))
	for _, s := range statuses {
		infos = append(infos, MigrationInfo{
			Version:   s.Source.Version,
			Name:      filepath.Base(s.Source.Path),
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return infos, nil
}
