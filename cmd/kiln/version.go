package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/kiln"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of kiln",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kiln version %s\n", strings.TrimSpace(kiln.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
