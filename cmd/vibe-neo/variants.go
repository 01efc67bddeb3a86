package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-neo/internal/annotate"
	"github.com/inodb/vibe-neo/internal/datasource/genelist"
	"github.com/inodb/vibe-neo/internal/duckdb"
	"github.com/inodb/vibe-neo/internal/output"
	"github.com/inodb/vibe-neo/internal/variant"
	"github.com/inodb/vibe-neo/internal/vcf"
)

func newVariantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "Parse and filter annotated variants",
		Long: `Parse a VEP-annotated VCF, classify and filter its variants and write
one row per variant and coding transcript. With --db the filtered
variants are stored as a new run; with --run a stored run is exported.`,
		Example: `  vibe-neo variants --vcf sample.vcf
  vibe-neo variants --vcf sample.vcf.gz --proteins genes.txt --filter-indel -o variants.tsv
  vibe-neo variants --vcf sample.vcf --db ~/.vibe-neo/runs.duckdb
  vibe-neo variants --db ~/.vibe-neo/runs.duckdb --run <run-id> --gene KRAS`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(viper.GetBool("verbose"))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			return runVariants(cmd.Context(), variantsOptions{
				VCF:      viper.GetString("vcf"),
				Proteins: viper.GetString("proteins"),
				Filters:  filterOptionsFromConfig(),
				DB:       viper.GetString("db"),
				Run:      viper.GetString("run"),
				Gene:     viper.GetString("gene"),
				Output:   viper.GetString("output"),
			}, os.Stdout, logger)
		},
	}

	addInputFlags(cmd)
	cmd.Flags().String("gene", "", "Only export variants of this gene from a stored run")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	return cmd
}

type variantsOptions struct {
	VCF      string
	Proteins string
	Filters  variant.FilterOptions
	DB       string
	Run      string
	Gene     string
	Output   string
}

func runVariants(ctx context.Context, opts variantsOptions, stdout io.Writer, logger *zap.Logger) error {
	switch {
	case opts.VCF == "" && opts.Run == "":
		return errors.New("either --vcf or --run is required")
	case opts.VCF != "" && opts.Run != "":
		return errors.New("--vcf and --run are mutually exclusive")
	case opts.Run != "" && opts.DB == "":
		return errors.New("--run requires --db")
	case opts.Gene != "" && opts.Run == "":
		return errors.New("--gene requires --run")
	}

	var store *duckdb.Store
	if opts.DB != "" {
		s, err := duckdb.Open(opts.DB)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	var (
		variants []*variant.Variant
		err      error
	)
	if opts.Gene != "" {
		variants, err = store.SearchByGene(ctx, opts.Run, opts.Gene)
		if err == nil {
			variants, err = variant.Filter(variants, opts.Filters)
		}
	} else {
		variants, err = loadVariants(ctx, opts.VCF, opts.Proteins, opts.Run, opts.Filters, store, logger)
	}
	if err != nil {
		return err
	}

	if opts.Output == "" {
		return output.WriteVariantTable(stdout, variants)
	}
	return writeFile(opts.Output, func(w io.Writer) error {
		return output.WriteVariantTable(w, variants)
	})
}

// loadVariants returns the filtered variants of a stored run, or parses and
// filters vcfPath and, with a store, records them as a new run. A proteins
// file restricts parsing to its genes.
func loadVariants(ctx context.Context, vcfPath, proteinsPath, runID string, filters variant.FilterOptions, store *duckdb.Store, logger *zap.Logger) ([]*variant.Variant, error) {
	if runID != "" {
		variants, err := store.LoadRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded run", zap.String("run_id", runID), zap.Int("variants", len(variants)))
		return variant.Filter(variants, filters)
	}

	var geneFilter []string
	if proteinsPath != "" {
		genes, err := genelist.Load(proteinsPath)
		if err != nil {
			return nil, err
		}
		geneFilter = genes
	}

	parser, err := vcf.NewParser(vcfPath)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	asm := annotate.NewAssembler(geneFilter)
	asm.SetLogger(logger)
	variants, err := asm.AssembleAll(parser)
	if err != nil {
		return nil, err
	}

	filtered, err := variant.Filter(variants, filters)
	if err != nil {
		return nil, err
	}
	logger.Info("filtered variants",
		zap.Int("header_lines", len(parser.Header())),
		zap.Int("parsed", len(variants)),
		zap.Int("kept", len(filtered)))

	if store == nil {
		return filtered, nil
	}
	fp, err := duckdb.StatFile(vcfPath)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	id, err := store.WriteRun(ctx, fp, filtered)
	if err != nil {
		return nil, fmt.Errorf("store run: %w", err)
	}
	logger.Info("stored run", zap.String("run_id", id), zap.String("db", store.Path()))
	return filtered, nil
}
