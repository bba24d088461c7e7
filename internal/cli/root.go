// Package cli implements the todo command line: database lifecycle,
// migrations and todo management against DATABASE_URL.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/maloquacious/semver"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo/internal/config"
	"github.com/Tomlord1122/todo/internal/database"
	"github.com/Tomlord1122/todo/internal/logger"
	"github.com/Tomlord1122/todo/internal/repository"
	"github.com/Tomlord1122/todo/internal/service"
)

var version = semver.Version{Minor: 1, Build: semver.Commit()}

// quietLevel is used when neither --log-level nor TODO_LOG_LEVEL is set,
// so informational logs stay off the terminal.
const quietLevel = "warn"

type rootOptions struct {
	databaseURL string
	logLevel    string
	jsonOutput  bool
}

// NewRootCommand builds the full command tree. Each call returns an
// independent tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "todo",
		Short:         "Manage the todo database and its items",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "database connection string (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		newDBCommand(opts),
		newMigrateCommand(opts),
		newNewCommand(opts),
		newListCommand(opts),
		newShowCommand(opts),
		newUpdateCommand(opts),
		newDeleteCommand(opts),
		newCleanupCommand(opts),
	)

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	level := o.logLevel
	if level == "" && os.Getenv("TODO_LOG_LEVEL") == "" {
		level = quietLevel
	}

	cfg, err := config.Load(config.WithDatabaseURL(o.databaseURL), config.WithLogLevel(level))
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.NewWithWriter(cfg.Log, cmd.ErrOrStderr()), nil
}

// withDatabase opens the configured database for the duration of fn.
func (o *rootOptions) withDatabase(cmd *cobra.Command, fn func(ctx context.Context, db database.Service, log zerolog.Logger) error) error {
	cfg, log, err := o.load(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := database.New(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing database")
		}
	}()

	return fn(ctx, db, log)
}

// withTodoService is withDatabase plus the repository and service layers.
func (o *rootOptions) withTodoService(cmd *cobra.Command, fn func(ctx context.Context, svc service.TodoService) error) error {
	return o.withDatabase(cmd, func(ctx context.Context, db database.Service, log zerolog.Logger) error {
		svc := service.NewTodoService(repository.NewGormTodoRepository(db.GetDB()), log)
		return fn(ctx, svc)
	})
}
