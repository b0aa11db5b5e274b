package main

import (
	"context"
	"fmt"

	"github.com/ammiranda/forest_service/repository"

	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the store schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the store applies pending migrations
			return withMigrator(cmd.Context(), root, func(m repository.Migrator) error {
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), root, func(m repository.Migrator) error {
				if err := m.RollbackSchema(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	})

	return cmd
}

func withMigrator(ctx context.Context, root *rootCommander, fn func(repository.Migrator) error) error {
	repo, err := root.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Cleanup(ctx)

	m, ok := repo.(repository.Migrator)
	if !ok {
		return fmt.Errorf("store does not support migrations")
	}
	return fn(m)
}

func printVersion(cmd *cobra.Command, m repository.Migrator) error {
	version, dirty, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("could not read schema version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
