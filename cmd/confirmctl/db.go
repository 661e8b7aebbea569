package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/openmineral/confirmation/internal/config"
	"github.com/openmineral/confirmation/internal/db"
)

func openDB(ctx context.Context) (*db.Queries, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return db.Open(ctx, cfg.Driver(), cfg.DataSource())
}

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create any missing tables in DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer q.Close()

			if err := q.Bootstrap(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", q.Driver())
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var bootstrap bool

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load reference data from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			seed, err := db.LoadSeed(f)
			if err != nil {
				return err
			}

			q, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer q.Close()

			if bootstrap {
				if err := q.Bootstrap(cmd.Context()); err != nil {
					return err
				}
			}
			counts, err := q.ApplySeed(cmd.Context(), seed)
			if err != nil {
				return err
			}

			tables := make([]string, 0, len(counts))
			for t := range counts {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			for _, t := range tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %d added\n", t, counts[t])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&bootstrap, "init", false, "create missing tables first")
	return cmd
}
