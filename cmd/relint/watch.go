package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"relint/internal/cache"
	"relint/internal/config"
	"relint/internal/engine"
)

const watchDebounce = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-lint files whenever they change",
	Long:  "Watch the given directories (default: the current directory) and re-run the lint pipeline after every change, debounced. Stop with Ctrl-C.",
	Args:  cobra.ArbitraryArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("config", "", "path to relint.toml or relint.yaml")
}

func runWatch(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()
	for _, root := range paths {
		if err := addWatchRecursive(watcher, root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Token indexes survive across passes; only changed files rescan.
	indexes, err := cache.NewIndexCache(1024)
	if err != nil {
		return err
	}

	pass := func() {
		res, err := engine.Run(ctx, engine.Options{
			Paths:   paths,
			Config:  cfg,
			Jobs:    jobs,
			Indexes: indexes,
		})
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "relint:", err)
			return
		}
		if err := writeReport(cmd, res); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "relint:", err)
		}
	}
	pass()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchRelevant(cfg, ev.Name) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, ev.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, pass)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "relint: watch:", err)
		}
	}
}

// watchRelevant reports whether a change at path should trigger a pass.
// Lintable sources and directory-level events count; editor noise in
// skipped trees does not.
func watchRelevant(cfg *config.Config, path string) bool {
	for p := filepath.Clean(path); ; {
		base := filepath.Base(p)
		if base == ".git" || base == "node_modules" {
			return false
		}
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		p = parent
	}
	if filepath.Ext(path) == "" {
		return true
	}
	return cfg.LintsPath(path)
}

func addWatchRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		switch d.Name() {
		case ".git", "node_modules":
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
