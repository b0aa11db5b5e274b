// Command forestctl runs maintenance tasks against the forest store
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ammiranda/forest_service/config"
	"github.com/ammiranda/forest_service/repository"

	"github.com/spf13/cobra"
)

const rootLongDesc string = `forestctl inspects and maintains the node store behind the forest service.

The store is selected with the same environment variables as the service
(STORE_DRIVER, SQLITE_PATH, DB_*). --sqlite overrides the SQLite path.`

type rootCommander struct {
	sqlitePath string
}

func (c *rootCommander) openRepository(ctx context.Context) (repository.Repository, error) {
	provider, err := config.NewProviderFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not build config provider: %w", err)
	}
	cfg, err := config.Load(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if c.sqlitePath != "" {
		cfg.StoreDriver = config.DriverSQLite
		cfg.SQLitePath = c.sqlitePath
	}

	repo, err := repository.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not open store: %w", err)
	}
	return repo, nil
}

func newRootCmd() *cobra.Command {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:           "forestctl",
		Short:         "Forest store maintenance",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to a SQLite database")

	cmd.AddCommand(
		newMigrateCmd(cmder),
		newValidateCmd(cmder),
		newStatsCmd(cmder),
		newPathCmd(cmder),
	)
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
