package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo/internal/database"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  `Apply and inspect the schema migrations embedded in this binary.`,
	}

	migrateRunCmd := &cobra.Command{
		Use:   "run",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd, func(ctx context.Context, db database.Service, log zerolog.Logger) error {
				result, err := database.Migrate(ctx, db, log)
				if err != nil {
					return err
				}

				return opts.print(cmd, result, func(p *printer) {
					if result.UpToDate() {
						p.linef("Database schema is up to date (version %d)", result.To)
						return
					}
					for _, name := range result.Applied {
						p.linef("Applied %s", name)
					}
					p.linef("Migrated database from version %d to %d", result.From, result.To)
				})
			})
		},
	}

	migrateInfoCmd := &cobra.Command{
		Use:   "info",
		Short: "List migrations and whether they have been applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDatabase(cmd, func(ctx context.Context, db database.Service, log zerolog.Logger) error {
				infos, err := database.MigrationStatus(ctx, db, log)
				if err != nil {
					return err
				}

				return opts.print(cmd, infos, func(p *printer) {
					p.table([]string{"VERSION", "NAME", "APPLIED", "APPLIED AT"}, func(row func(...string)) {
						for _, info := range infos {
							appliedAt := ""
							if info.Applied {
								appliedAt = info.AppliedAt.UTC().Format(time.RFC3339)
							}
							row(strconv.FormatInt(info.Version, 10), info.Name, yesNo(info.Applied), appliedAt)
						}
					})
				})
			})
		},
	}

	migrateCmd.AddCommand(migrateRunCmd, migrateInfoCmd)
	return migrateCmd
}
