package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"

	"relint/internal/config"
)

// skipDirs are never descended into regardless of ignore files.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// DiscoverFiles expands the given paths into a sorted, deduplicated list
// of lintable files. Directories are walked recursively, honoring a
// .gitignore at the directory root; files named explicitly are always
// included.
func DiscoverFiles(paths []string, cfg *config.Config) ([]string, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot lint %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		var matcher *ignore.GitIgnore
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(path, ".gitignore")); err == nil {
			matcher = gi
		}
		root := path
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil {
				rel = p
			}
			if d.IsDir() {
				if p != root && (skipDirs[d.Name()] || ignored(matcher, rel)) {
					return filepath.SkipDir
				}
				return nil
			}
			if ignored(matcher, rel) {
				return nil
			}
			if cfg.LintsPath(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("cannot walk %s: %w", root, err)
		}
	}

	sort.Strings(out)
	return out, nil
}

func ignored(matcher *ignore.GitIgnore, rel string) bool {
	return matcher != nil && matcher.MatchesPath(rel)
}
