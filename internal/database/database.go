package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Tomlord1122/todo/internal/config"
	"github.com/Tomlord1122/todo/internal/logger"
)

// PingTimeout bounds the startup connectivity check.
const PingTimeout = 10 * time.Second

// Service exposes the GORM handle and pool lifecycle to the rest of the app.
type Service interface {
	Health() map[string]string
	Close() error
	GetDB() *gorm.DB
	Dialect() string
}

type service struct {
	db           *gorm.DB
	target       Target
	maxOpenConns int
	log          zerolog.Logger
}

// New opens the database named by cfg.URL. sqlite files must already
// exist; create them with Create first.
func New(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (Service, error) {
	target, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch target.Dialect {
	case DialectSQLite:
		if !target.InMemory() {
			if _, err := os.Stat(target.Path); err != nil {
				if os.IsNotExist(err) {
					return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, target.Path)
				}
				return nil, fmt.Errorf("checking database file: %w", err)
			}
		}
		dialector = sqlite.Open(target.DSN)
	case DialectPostgres:
		dialector = postgres.Open(target.DSN)
	default:
		return nil, fmt.Errorf("%w: dialect %q", ErrUnsupportedURL, target.Dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log, cfg.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 100
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("dialect", target.Dialect).Msg("connected to the database")

	return &service{
		db:           db,
		target:       target,
		maxOpenConns: maxOpen,
		log:          log,
	}, nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

func (s *service) Dialect() string {
	return s.target.Dialect
}

// Health pings the database and reports pool statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)
	stats["dialect"] = s.target.Dialect

	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("failed to get underlying DB for health check: %v", err)
		s.log.Error().Err(err).Msg("health check: no underlying DB")
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.log.Error().Err(err).Msg("db down")
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := sqlDB.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if dbStats.OpenConnections > s.maxOpenConns*8/10 {
		stats["message"] = "The database is experiencing heavy load."
	}

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	if dbStats.MaxIdleClosed > int64(dbStats.OpenConnections)/2 && dbStats.OpenConnections > dbStats.Idle {
		stats["message"] = "Many idle connections are being closed, consider revising the connection pool settings."
	}

	if dbStats.MaxLifetimeClosed > int64(dbStats.OpenConnections)/2 && dbStats.OpenConnections > 0 {
		stats["message"] = "Many connections are being closed due to max lifetime, consider increasing ConnMaxLifetime."
	}

	return stats
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Info().Str("dialect", s.target.Dialect).Msg("closing database connection pool")
	return sqlDB.Close()
}
