// Package main provides the vibe-neo command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-neo/internal/variant"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const noVariantsMessage = "No variants left after filtering. Please refine your filtering criteria."

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, variant.ErrNoVariants) {
			fmt.Println(noVariantsMessage)
			return ExitError
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "vibe-neo",
		Short: "Neoepitope provenance from VEP-annotated variants",
		Long: `vibe-neo reads VEP-annotated VCF files, classifies and filters the
protein-altering variants, and maps peptides produced by an external
epitope generator back to the transcripts, genes and variants they
derive from.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.vibe-neo.yaml)")
	root.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	root.AddCommand(newPredictCmd())
	root.AddCommand(newVariantsCmd())
	root.AddCommand(newRunsCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads ~/.vibe-neo.yaml (or cfgFile) and VIBE_NEO_* environment
// variables. A missing config file is not an error.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".vibe-neo")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VIBE_NEO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (cfgFile == "" && os.IsNotExist(err)) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// defaultConfigPath returns ~/.vibe-neo.yaml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".vibe-neo.yaml"), nil
}

// newLogger builds the stderr logger. Debug output is enabled by --verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
