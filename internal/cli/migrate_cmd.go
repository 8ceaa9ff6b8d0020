package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, closeFn, err := e.openMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			return m.Migrate(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, closeFn, err := e.openMigrator(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			return m.MigrationStatus(cmd.Context())
		},
	})

	return cmd
}
