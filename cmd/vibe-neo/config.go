package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-neo configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.vibe-neo.yaml.
Any command flag can be given a default here, e.g. "reference" or "db".`,
		Example: `  vibe-neo config                          # show all config
  vibe-neo config set reference GRCh37     # default assembly
  vibe-neo config set db ~/.vibe-neo/runs.duckdb
  vibe-neo config get reference            # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(os.Stdout)
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(os.Stdout, args[0])
		},
	}
}

// configKeys are the settings persisted by config set. Flag bindings of the
// running command are left out so they are not written back as defaults.
var configKeys = []string{
	"vcf", "proteins", "peptides", "bindings", "alleles", "method",
	"reference", "min-length", "max-length", "filter-snp", "filter-indel",
	"filter-fs-indel", "predict-bindings", "etk", "db", "verbose",
}

func runConfigShow(w io.Writer) error {
	settings := make(map[string]any)
	for _, key := range configKeys {
		if viper.InConfig(key) {
			settings[key] = viper.Get(key)
		}
	}
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No configuration set. Config file: ~/.vibe-neo.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func runConfigSet(key, value string) error {
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		path, err := defaultConfigPath()
		if err != nil {
			return err
		}
		cfgFile = path
	}

	// Write only the file's own settings plus the new value.
	file := viper.New()
	file.SetConfigFile(cfgFile)
	if _, err := os.Stat(cfgFile); err == nil {
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	file.Set(key, parseConfigValue(value))

	if err := file.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	viper.Set(key, parseConfigValue(value))

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

// parseConfigValue converts boolean-like and integer values.
func parseConfigValue(value string) any {
	switch value {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return value
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
