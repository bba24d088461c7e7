package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Tomlord1122/todo/internal/config"
	"github.com/Tomlord1122/todo/internal/database"
	"github.com/Tomlord1122/todo/internal/service"
)

type Server struct {
	cfg         config.ServerConfig
	todoService service.TodoService
	db          database.Service
	log         zerolog.Logger
}

func newServer(cfg config.ServerConfig, todoService service.TodoService, dbService database.Service, log zerolog.Logger) *Server {
	return &Server{
		cfg:         cfg,
		todoService: todoService,
		db:          dbService,
		log:         log.With().Str("component", "http").Logger(),
	}
}

// NewServer wires the router into an *http.Server using the configured
// port and timeouts.
func NewServer(cfg config.ServerConfig, todoService service.TodoService, dbService database.Service, log zerolog.Logger) *http.Server {
	appServer := newServer(cfg, todoService, dbService, log)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
