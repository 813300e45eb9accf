package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/kiln/pkg/adapters/fs"
)

var readCmd = &cobra.Command{
	Use:   "read [patterns...]",
	Short: "Build the records of the matched documents",
	Long: `Build every record declared in the documents matched by the glob patterns
("docs/**/*.xml") and print them as JSON, YAML or CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := documentPatterns(args)
		if err != nil {
			return err
		}
		r, err := newReader()
		if err != nil {
			return err
		}

		records, err := r.ReadGlob(cmd.Context(), patterns...)
		if err != nil {
			return err
		}

		out := viper.GetString("out")
		format := viper.GetString("format")
		if format == "" {
			format = "json"
			if ext := filepath.Ext(out); ext != "" {
				format = ext
			}
		}
		enc, err := fs.EncoderFor(format)
		if err != nil {
			return err
		}

		if out == "" {
			return enc.Encode(cmd.OutOrStdout(), records)
		}
		var buf bytes.Buffer
		if err := enc.Encode(&buf, records); err != nil {
			return err
		}
		if err := fs.WriteFile(out, buf.Bytes()); err != nil {
			return err
		}
		slog.Info("records written", "path", out, "records", len(records))
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d records to %s\n", len(records), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringP("format", "f", "", "Output format: json, yaml or csv (default from --out, else json)")
	readCmd.Flags().StringP("out", "o", "", "Write the records to a file instead of stdout")
	_ = viper.BindPFlag("format", readCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("out", readCmd.Flags().Lookup("out"))
}
