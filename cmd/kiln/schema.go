package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/kiln/pkg/adapters/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the normalized entity definition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newReader()
		if err != nil {
			return err
		}
		data, err := schema.Marshal(r.Definition())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
