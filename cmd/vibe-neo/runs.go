package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-neo/internal/duckdb"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List or delete stored variant runs",
		Example: `  vibe-neo runs --db ~/.vibe-neo/runs.duckdb
  vibe-neo runs --db ~/.vibe-neo/runs.duckdb --delete <run-id>
  vibe-neo runs --db ~/.vibe-neo/runs.duckdb --clear-lookups`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd.Context(), runsOptions{
				DB:           viper.GetString("db"),
				Delete:       viper.GetString("delete"),
				ClearLookups: viper.GetBool("clear-lookups"),
			}, os.Stdout, os.Stderr)
		},
	}

	cmd.Flags().String("db", "", "DuckDB database storing filtered variant runs")
	cmd.Flags().String("delete", "", "Delete the run with this ID")
	cmd.Flags().Bool("clear-lookups", false, "Remove cached Ensembl gene lookups")

	return cmd
}

type runsOptions struct {
	DB           string
	Delete       string
	ClearLookups bool
}

func runRuns(ctx context.Context, opts runsOptions, stdout, stderr io.Writer) error {
	if opts.DB == "" {
		return errors.New("--db is required")
	}
	store, err := duckdb.Open(opts.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.Delete == "" && !opts.ClearLookups {
		runs, err := store.Runs(ctx)
		if err != nil {
			return err
		}
		return printRuns(stdout, runs)
	}

	if opts.Delete != "" {
		if err := store.DeleteRun(ctx, opts.Delete); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Deleted run %s\n", opts.Delete)
	}
	if opts.ClearLookups {
		if err := store.ClearGenes(ctx); err != nil {
			return fmt.Errorf("clear gene lookups: %w", err)
		}
		fmt.Fprintln(stderr, "Cleared cached gene lookups")
	}
	return nil
}

func printRuns(w io.Writer, runs []duckdb.Run) error {
	if _, err := fmt.Fprintln(w, "run_id\tcreated\tvariants\tsource\tsource_size\tsource_modtime"); err != nil {
		return err
	}
	for _, r := range runs {
		modTime := "-"
		if !r.Source.ModTime.IsZero() {
			modTime = r.Source.ModTime.UTC().Format(time.RFC3339)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
			r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.VariantCount,
			r.Source.Path, r.Source.Size, modTime); err != nil {
			return err
		}
	}
	return nil
}
