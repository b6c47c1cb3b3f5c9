package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"relint/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the relint version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}
