package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tomlord1122/todo/internal/config"
	"github.com/Tomlord1122/todo/internal/database"
	"github.com/Tomlord1122/todo/internal/logger"
	"github.com/Tomlord1122/todo/internal/repository"
	"github.com/Tomlord1122/todo/internal/server"
	"github.com/Tomlord1122/todo/internal/service"
)

const shutdownTimeout = 5 * time.Second

func gracefulShutdown(apiServer *http.Server, dbService database.Service, log zerolog.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has shutdownTimeout to finish in-flight requests.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := dbService.Close(); err != nil {
		log.Error().Err(err).Msg("closing database connection pool")
	}

	log.Info().Msg("server exiting")

	done <- true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger config yet, fall back to the defaults.
		bootLog := logger.New(config.LogConfig{Level: "info", Format: "console"})
		bootLog.Fatal().Err(err).Msg("loading configuration")
	}

	log := logger.New(cfg.Log)

	ctx := context.Background()
	dbService, err := database.New(ctx, cfg.Database, log)
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			log.Fatal().Err(err).Msg("database does not exist, run `todo db create` and `todo migrate run` first")
		}
		log.Fatal().Err(err).Msg("connecting to database")
	}

	if cfg.Database.MigrateOnStart {
		if _, err := database.Migrate(ctx, dbService, log); err != nil {
			_ = dbService.Close()
			log.Fatal().Err(err).Msg("running migrations on start")
		}
	}

	todoRepo := repository.NewGormTodoRepository(dbService.GetDB())
	todoService := service.NewTodoService(todoRepo, log)
	apiServer := server.NewServer(cfg.Server, todoService, dbService, log)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, log, done)

	log.Info().Str("addr", apiServer.Addr).Str("dialect", dbService.Dialect()).Msg("starting server")
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("http server stopped")
		os.Exit(1)
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}
