package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"relint/internal/config"
	"relint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "relint",
	Short:         "Combined linter and formatter for JavaScript, TypeScript, and Markdown",
	Long:          "relint scans source files, runs a registry of rules against each file, reports or auto-fixes violations, and reformats files to a canonical style.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a process exit code through RunE without aborting
// mid-file; deferred cleanup and atomic writes always finish first.
type exitError struct{ code int }

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "report errors only")
	rootCmd.PersistentFlags().Bool("timings", false, "show phase timing information")
	rootCmd.PersistentFlags().Int("jobs", 0, "number of parallel workers (0 = all CPUs)")

	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "relint:", err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves the --color flag, auto-detecting a TTY.
func colorEnabled(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch mode {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto":
		return isTerminal(os.Stdout), nil
	}
	return false, fmt.Errorf("invalid --color value %q (must be auto, on, or off)", mode)
}

// loadConfig resolves the effective configuration: an explicit --config
// path, else the nearest relint.toml/.yaml walking up from the working
// directory, else the defaults.
func loadConfig(explicit string) (*config.Config, error) {
	if explicit != "" {
		return config.Load(explicit)
	}
	cfg, ok, err := config.Discover(".")
	if err != nil {
		return nil, err
	}
	if !ok {
		return config.Default(), nil
	}
	return cfg, nil
}
