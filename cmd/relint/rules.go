package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"relint/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, r := range rules.All() {
			meta := r.Meta()
			fixable := " "
			if meta.Fixable {
				fixable = "F"
			}
			fmt.Fprintf(out, "%-22s %-8s %s  %s\n",
				meta.Name, meta.DefaultSeverity, fixable, meta.Description)
		}
		return nil
	},
}
