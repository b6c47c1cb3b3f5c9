package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"relint/internal/engine"
	"relint/internal/fix"
	"relint/internal/format"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [paths...]",
	Short: "Rewrite files to the canonical style",
	Long:  "Format the given files and directories (default: the current directory). With --check, report files that would change and exit non-zero instead of writing.",
	Args:  cobra.ArbitraryArgs,
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().String("config", "", "path to relint.toml or relint.yaml")
	fmtCmd.Flags().Bool("check", false, "list files that would change, write nothing")
	fmtCmd.Flags().Int("max-blank-lines", 1, "longest run of blank lines kept")
}

func runFmt(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	maxBlank, err := cmd.Flags().GetInt("max-blank-lines")
	if err != nil {
		return err
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return err
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	paths, err := engine.DiscoverFiles(roots, cfg)
	if err != nil {
		return err
	}

	mode := fix.ModeWrite
	if check {
		mode = fix.ModeCheck
	}
	res, err := format.Run(cmd.Context(), paths, format.RunOptions{
		Mode:  mode,
		Jobs:  jobs,
		Style: format.Options{MaxBlankLines: maxBlank},
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := false
	for _, o := range res.Files {
		switch {
		case o.Err != nil:
			fmt.Fprintf(out, "%s: %v\n", o.Path, o.Err)
			failed = true
		case o.Result.Changed && check:
			fmt.Fprintln(out, o.Path)
		case o.Result.Changed:
			fmt.Fprintf(out, "formatted %s\n", o.Path)
		}
	}
	if failed || (check && res.Changed > 0) {
		return &exitError{code: 1}
	}
	return nil
}
