package cli

import (
	"fmt"

	"github.com/bjorheimar/catalog-sync/internal/pkg/database"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the catalog schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(opts.cfg)
			defer log.Sync()

			db, err := openDB(opts.cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(commandContext(cmd), db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
