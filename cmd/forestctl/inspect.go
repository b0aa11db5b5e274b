package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ammiranda/forest_service/tree"

	"github.com/spf13/cobra"
)

func withEngine(ctx context.Context, root *rootCommander, fn func(*tree.Engine) error) error {
	repo, err := root.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Cleanup(ctx)
	return fn(tree.NewEngine(repo, nil))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newValidateCmd(root *rootCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Report orphaned nodes and cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), root, func(e *tree.Engine) error {
				report, err := e.ValidateTreeStructure(cmd.Context(), nil)
				if err != nil {
					return err
				}
				if err := printJSON(cmd, report); err != nil {
					return err
				}
				if !report.IsValid {
					return fmt.Errorf("found %d structural issues", len(report.Issues))
				}
				return nil
			})
		},
	}
}

func newStatsCmd(root *rootCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print forest statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), root, func(e *tree.Engine) error {
				stats, err := e.GetStats(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, stats)
			})
		},
	}
}

func newPathCmd(root *rootCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "path <id>",
		Short: "Print the root-to-node path of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid node id %q", args[0])
			}
			return withEngine(cmd.Context(), root, func(e *tree.Engine) error {
				path, err := e.GetPath(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, path)
			})
		},
	}
}
