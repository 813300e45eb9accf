package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/kiln"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "Build typed records from markup documents",
	Long: `Kiln reads XML documents and builds one record per entity element.
Command scopes (set, append, prefix, tag, add) and variable scopes (var)
shape every record declared beneath them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}

		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringP("schema", "s", "", "Schema file describing the entity (YAML)")
	flags.String("cache-dir", "", "Directory persisting built records (e.g. .kiln)")
	flags.Bool("strict", true, "Reject unknown schema fields")
	flags.Int("max-depth", 0, "Maximum document nesting (0 keeps the default)")

	for _, name := range []string{"verbose", "schema", "cache-dir", "strict", "max-depth"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

// initConfig reads .kiln.yaml from the project root (or the working
// directory) and KILN_* environment variables. Flags take precedence.
func initConfig() error {
	viper.SetConfigName(".kiln")
	viper.SetConfigType("yaml")

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := kiln.FindRoot(wd); err == nil {
		viper.AddConfigPath(root)
	}
	viper.AddConfigPath(wd)

	// The config file is optional.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvPrefix("KILN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	return nil
}

// newReader builds a Reader from the resolved configuration.
func newReader() (*kiln.Reader, error) {
	schemaFile := viper.GetString("schema")
	if schemaFile == "" {
		return nil, fmt.Errorf("no schema: use --schema, KILN_SCHEMA or schema in .kiln.yaml")
	}
	return kiln.New(
		kiln.WithSchemaFile(schemaFile),
		kiln.WithStrict(viper.GetBool("strict")),
		kiln.WithMaxDepth(viper.GetInt("max-depth")),
		kiln.WithCacheDir(viper.GetString("cache-dir")),
		kiln.WithLogger(slog.Default()),
	)
}

// documentPatterns returns the patterns given as arguments, or the
// documents listed in the config file.
func documentPatterns(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if patterns := viper.GetStringSlice("documents"); len(patterns) > 0 {
		return patterns, nil
	}
	return nil, fmt.Errorf("no documents: pass glob patterns or set documents in .kiln.yaml")
}
