package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"relint/internal/cache"
	"relint/internal/engine"
	"relint/internal/observ"
	"relint/internal/report"
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run the configured rules and report violations",
	Long:  "Lint the given files and directories (default: the current directory). Exit status is 0 when no errors remain and warnings are within the configured maximum.",
	Args:  cobra.ArbitraryArgs,
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().String("config", "", "path to relint.toml or relint.yaml")
	lintCmd.Flags().Bool("fix", false, "apply available fixes and rewrite files")
	lintCmd.Flags().Bool("fix-dry-run", false, "compute fixes without touching disk")
	lintCmd.Flags().Int("max-warnings", -1, "fail when warnings exceed this count (-1 = unlimited)")
	lintCmd.Flags().Bool("no-cache", false, "skip the on-disk result cache")
}

func runLint(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-warnings") {
		cfg.MaxWarnings, err = cmd.Flags().GetInt("max-warnings")
		if err != nil {
			return err
		}
	}

	doFix, err := cmd.Flags().GetBool("fix")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("fix-dry-run")
	if err != nil {
		return err
	}
	if doFix && dryRun {
		return fmt.Errorf("--fix and --fix-dry-run are mutually exclusive")
	}
	fixMode := engine.FixNone
	switch {
	case doFix:
		fixMode = engine.FixWrite
	case dryRun:
		fixMode = engine.FixDryRun
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	var disk *cache.Disk
	if !noCache {
		// Cache failures degrade to cold runs, never to lint failures.
		disk, _ = cache.Open("relint")
	}
	indexes, err := cache.NewIndexCache(256)
	if err != nil {
		return err
	}

	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	res, err := engine.Run(cmd.Context(), engine.Options{
		Paths:   paths,
		Config:  cfg,
		Jobs:    jobs,
		Fix:     fixMode,
		Disk:    disk,
		Indexes: indexes,
		Timer:   timer,
	})
	if err != nil {
		return err
	}

	if err := writeReport(cmd, res); err != nil {
		return err
	}
	if timer != nil {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	if res.ExitCode != 0 {
		return &exitError{code: res.ExitCode}
	}
	return nil
}

// writeReport renders a run result with the root command's output flags.
func writeReport(cmd *cobra.Command, res *engine.Result) error {
	useColor, err := colorEnabled(cmd)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	opts := report.Options{Color: useColor, Quiet: quiet}

	files := make([]report.FileIssues, 0, len(res.Files))
	fixable := 0
	for _, v := range res.Files {
		files = append(files, report.FileIssues{Path: v.Path, Issues: v.Issues})
		for _, is := range v.Issues {
			if is.Fix != nil {
				fixable++
			}
		}
	}
	out := cmd.OutOrStdout()
	report.Write(out, res.FileSet, files, opts)
	report.Summary(out, res.Errors, res.Warnings, fixable, opts)
	return nil
}
