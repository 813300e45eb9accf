package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var validateCmd = &cobra.Command{
	Use:   "validate [patterns...]",
	Short: "Check the schema and, optionally, the documents",
	Long: `Load the schema and report its entity. When patterns are given (or listed in
.kiln.yaml) every matched document is built without printing the records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newReader()
		if err != nil {
			return err
		}
		def := r.Definition()
		fmt.Fprintf(cmd.OutOrStdout(), "schema ok: %s (%d properties, fingerprint %s)\n",
			def.Name, len(def.Properties()), def.Fingerprint())

		if len(args) == 0 && len(viper.GetStringSlice("documents")) == 0 {
			return nil
		}
		patterns, err := documentPatterns(args)
		if err != nil {
			return err
		}
		records, err := r.ReadGlob(cmd.Context(), patterns...)
		if err != nil {
			return fmt.Errorf("invalid document: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "documents ok: %d records\n", len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
