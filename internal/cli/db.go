package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo/internal/database"
)

var errDropWithoutForce = errors.New("refusing to drop the database without --force")

func newDBCommand(opts *rootOptions) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	dbCreateCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the database named by DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}

			created, err := database.Create(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			log.Debug().Bool("created", created).Msg("db create finished")

			return opts.print(cmd, map[string]any{"created": created}, func(p *printer) {
				if created {
					p.line("Created database")
				} else {
					p.line("Database already exists")
				}
			})
		},
	}

	var force bool
	dbDropCmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop the database named by DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				return errDropWithoutForce
			}

			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}

			dropped, err := database.Drop(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			log.Debug().Bool("dropped", dropped).Msg("db drop finished")

			return opts.print(cmd, map[string]any{"dropped": dropped}, func(p *printer) {
				if dropped {
					p.line("Dropped database")
				} else {
					p.line("Database does not exist")
				}
			})
		},
	}
	dbDropCmd.Flags().BoolVarP(&force, "force", "f", false, "confirm that all data should be deleted")

	dbCmd.AddCommand(dbCreateCmd, dbDropCmd)
	return dbCmd
}
