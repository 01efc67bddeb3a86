package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-neo/internal/annotate"
	"github.com/inodb/vibe-neo/internal/datasource/genelist"
	"github.com/inodb/vibe-neo/internal/duckdb"
	"github.com/inodb/vibe-neo/internal/output"
	"github.com/inodb/vibe-neo/internal/peptide"
	"github.com/inodb/vibe-neo/internal/provenance"
	"github.com/inodb/vibe-neo/internal/reference"
	"github.com/inodb/vibe-neo/internal/variant"
)

// predictOptions holds the resolved settings of the predict command.
type predictOptions struct {
	VCF             string
	Proteins        string
	Peptides        string
	Bindings        string
	Alleles         []string
	Method          string
	Reference       string
	EnsemblURL      string
	MinLength       int
	MaxLength       int
	Filters         variant.FilterOptions
	PredictBindings bool
	ETK             bool
	DB              string
	Run             string
	Output          string
}

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Map generated peptides back to genes and variants",
		Long: `Map peptides produced by an external epitope generator back to the
transcripts, genes and variants they derive from, optionally joined with
binding predictions.

Variant mode (--vcf, or --db with --run) reads VEP-annotated variants,
filters them and reports the variants carried by each peptide. With
--proteins as well, the proteins file restricts parsing to those genes.
Protein mode (--proteins only) resolves each gene symbol to its canonical
transcript through the Ensembl REST API.`,
		Example: `  vibe-neo predict --vcf sample.vcf --peptides peptides.tsv -o report.csv
  vibe-neo predict --vcf sample.vcf --proteins genes.txt --filter-fs-indel \
      --peptides peptides.tsv --predict-bindings --bindings bindings.tsv \
      --alleles 'HLA-A*02:01;HLA-B*07:02' --etk -o report.csv
  vibe-neo predict --proteins genes.txt --reference GRCh37 --peptides peptides.tsv -o report.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(viper.GetBool("verbose"))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			return runPredict(cmd.Context(), predictOptionsFromConfig(), logger)
		},
	}

	f := cmd.Flags()
	addInputFlags(cmd)
	f.String("peptides", "", "Peptide table written by the epitope generator (sequence, protein_id, variants)")
	f.String("bindings", "", "Binding table written by the predictor (peptide, method, one column per allele)")
	f.String("alleles", "", "Semicolon-separated HLA alleles to report (default: all in the binding table)")
	f.String("method", "bimas", "Prediction method to report")
	f.String("ensembl-url", "", "Override the Ensembl REST base URL")
	f.Int("min-length", 8, "Minimum peptide length")
	f.Int("max-length", 12, "Maximum peptide length")
	f.Bool("predict-bindings", false, "Report binding predictions from --bindings")
	f.Bool("etk", false, "Also write the condensed <output>_etk.tsv score matrix (one method)")
	f.StringP("output", "o", "", "Report file")
	_ = f.MarkHidden("ensembl-url")

	return cmd
}

// addInputFlags registers the variant input flags shared by predict and
// variants.
func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("vcf", "v", "", "VEP-annotated VCF file (use '-' for stdin)")
	f.StringP("proteins", "p", "", "Gene symbol list, one per line")
	f.StringP("reference", "r", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	f.Bool("filter-snp", false, "Filter out SNPs")
	f.Bool("filter-indel", false, "Filter out insertions and deletions, including frameshifts")
	f.Bool("filter-fs-indel", false, "Filter out frameshift insertions and deletions")
	f.String("db", "", "DuckDB database storing filtered variant runs")
	f.String("run", "", "Read variants from this stored run instead of --vcf (requires --db)")
}

func filterOptionsFromConfig() variant.FilterOptions {
	return variant.FilterOptions{
		SNP:             viper.GetBool("filter-snp"),
		Indel:           viper.GetBool("filter-indel"),
		FrameshiftIndel: viper.GetBool("filter-fs-indel"),
	}
}

func predictOptionsFromConfig() predictOptions {
	return predictOptions{
		VCF:             viper.GetString("vcf"),
		Proteins:        viper.GetString("proteins"),
		Peptides:        viper.GetString("peptides"),
		Bindings:        viper.GetString("bindings"),
		Alleles:         splitAlleles(viper.GetString("alleles")),
		Method:          viper.GetString("method"),
		Reference:       viper.GetString("reference"),
		EnsemblURL:      viper.GetString("ensembl-url"),
		MinLength:       viper.GetInt("min-length"),
		MaxLength:       viper.GetInt("max-length"),
		Filters:         filterOptionsFromConfig(),
		PredictBindings: viper.GetBool("predict-bindings"),
		ETK:             viper.GetBool("etk"),
		DB:              viper.GetString("db"),
		Run:             viper.GetString("run"),
		Output:          viper.GetString("output"),
	}
}

// splitAlleles splits a semicolon-separated allele list.
func splitAlleles(s string) []string {
	var alleles []string
	for _, a := range strings.Split(s, ";") {
		if a = strings.TrimSpace(a); a != "" {
			alleles = append(alleles, a)
		}
	}
	return alleles
}

func (o predictOptions) variantMode() bool {
	return o.VCF != "" || o.Run != ""
}

func (o predictOptions) validate() error {
	if !o.variantMode() && o.Proteins == "" {
		return errors.New("either --vcf or --proteins is required")
	}
	if o.VCF != "" && o.Run != "" {
		return errors.New("--vcf and --run are mutually exclusive")
	}
	if o.Run != "" && o.DB == "" {
		return errors.New("--run requires --db")
	}
	if o.Peptides == "" {
		return errors.New("--peptides is required")
	}
	if o.Output == "" {
		return errors.New("--output is required")
	}
	if o.PredictBindings && o.Bindings == "" {
		return errors.New("--predict-bindings requires --bindings")
	}
	if o.ETK && !o.PredictBindings {
		return errors.New("--etk requires --predict-bindings")
	}
	if o.ETK && o.Method == "" {
		return errors.New("--etk requires --method")
	}
	if o.MinLength > 0 && o.MaxLength > 0 && o.MinLength > o.MaxLength {
		return fmt.Errorf("--min-length %d exceeds --max-length %d", o.MinLength, o.MaxLength)
	}
	return nil
}

// runPredict runs the pipeline and writes the report files. No file is
// written when an earlier stage fails.
func runPredict(ctx context.Context, opts predictOptions, logger *zap.Logger) error {
	if err := opts.validate(); err != nil {
		return err
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
		genes  annotate.TranscriptGenes
		source *peptide.TableSource
	)
	if opts.variantMode() {
		variants, err := loadVariants(ctx, opts.VCF, opts.Proteins, opts.Run, opts.Filters, store, logger)
		if err != nil {
			return err
		}
		genes = annotate.BuildTranscriptGenes(variants)
		source = peptide.NewTableSource(opts.Peptides, variants)
	} else {
		g, err := resolveProteins(ctx, opts, store, logger)
		if err != nil {
			return err
		}
		genes = g
		source = peptide.NewTableSource(opts.Peptides, nil)
	}
	source.SetLogger(logger)

	peptides, err := source.Peptides()
	if err != nil {
		return err
	}

	rec := provenance.NewReconciler(genes, provenance.Options{
		WithVariants: opts.variantMode(),
		MinLength:    opts.MinLength,
		MaxLength:    opts.MaxLength,
	})
	rec.SetLogger(logger)
	rows := rec.Reconcile(peptides)

	if !opts.PredictBindings {
		if err := writeFile(opts.Output, func(w io.Writer) error {
			rw := output.NewReportWriter(w, opts.variantMode())
			if err := rw.WriteHeader(); err != nil {
				return err
			}
			for _, row := range rows {
				if err := rw.Write(row); err != nil {
					return err
				}
			}
			return rw.Flush()
		}); err != nil {
			return err
		}
		if err := writeFile(output.PeptideListPath(opts.Output), func(w io.Writer) error {
			return output.WritePeptideList(w, rows)
		}); err != nil {
			return err
		}
		logger.Info("wrote report", zap.String("path", opts.Output), zap.Int("peptides", len(rows)))
		return nil
	}

	table, err := peptide.NewTablePredictor(opts.Bindings).Predict(peptides, opts.Alleles, opts.Method)
	if err != nil {
		return err
	}
	scored := rec.Join(rows, table)

	if err := writeFile(opts.Output, func(w io.Writer) error {
		rw := output.NewScoredReportWriter(w, table.Alleles, opts.variantMode())
		if err := rw.WriteHeader(); err != nil {
			return err
		}
		for _, row := range scored {
			if err := rw.WriteScored(row); err != nil {
				return err
			}
		}
		return rw.Flush()
	}); err != nil {
		return err
	}
	logger.Info("wrote report",
		zap.String("path", opts.Output),
		zap.Int("rows", len(scored)),
		zap.Strings("alleles", table.Alleles))

	if !opts.ETK {
		return nil
	}
	return writeFile(output.CondensedPath(opts.Output), func(w io.Writer) error {
		cw := output.NewCondensedWriter(w, table.Alleles)
		if err := cw.WriteHeader(); err != nil {
			return err
		}
		for _, row := range scored {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return cw.Flush()
	})
}

// resolveProteins looks up each gene of the proteins file in Ensembl and
// maps the canonical transcripts to their symbols. Lookups are cached in
// store when one is open.
func resolveProteins(ctx context.Context, opts predictOptions, store *duckdb.Store, logger *zap.Logger) (annotate.TranscriptGenes, error) {
	symbols, err := genelist.Load(opts.Proteins)
	if err != nil {
		return nil, err
	}

	client := reference.NewEnsemblClient(opts.Reference)
	if opts.EnsemblURL != "" {
		client = reference.NewEnsemblClientWithURL(opts.EnsemblURL)
	}
	var lookup reference.Lookup = client
	if store != nil {
		cached := reference.NewCachedLookup(client, store, opts.Reference)
		cached.SetLogger(logger)
		lookup = cached
	}

	records, err := reference.ResolveAll(ctx, lookup, symbols)
	if err != nil {
		return nil, fmt.Errorf("resolve proteins: %w", err)
	}
	for _, r := range records {
		logger.Debug("resolved gene",
			zap.String("symbol", r.Symbol),
			zap.String("transcript", r.TranscriptID),
			zap.String("protein", r.ProteinID))
	}
	logger.Info("resolved proteins",
		zap.Int("genes", len(records)),
		zap.String("assembly", reference.NormalizeAssembly(opts.Reference)))
	return reference.TranscriptSymbols(records), nil
}

// writeFile creates path and writes it with fn.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
