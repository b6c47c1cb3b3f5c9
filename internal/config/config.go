// Package config loads and validates relint.toml / relint.yaml files.
// Validation is strict: unknown keys, unknown rule ids, and malformed
// severities fail the load rather than being silently ignored.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"relint/internal/diag"
	"relint/internal/rules"
)

// DefaultExtensions lists the file extensions linted when the config
// names none.
var DefaultExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".md"}

// DefaultIgnorePattern exempts underscore-prefixed binding names.
const DefaultIgnorePattern = "^_"

// fileNames are probed in order during upward discovery.
var fileNames = []string{"relint.toml", "relint.yaml", "relint.yml"}

// Config is the validated configuration the engine consumes.
type Config struct {
	// Extensions lists lintable file extensions, each with a leading dot.
	Extensions []string
	// MaxWarnings caps warnings before the run fails; -1 means unlimited.
	MaxWarnings int
	// Rules maps rule id to effective severity. SevOff rules never run.
	Rules map[string]diag.Severity
	// Options carries the typed per-rule option structs.
	Options *rules.OptionSet
	// IgnorePattern exempts matching binding names from unused checks.
	IgnorePattern *regexp.Regexp
	// Path is the file this config was loaded from, empty for Default.
	Path string
}

// fileConfig is the raw on-disk shape shared by both loaders.
type fileConfig struct {
	Extensions    []string          `toml:"extensions" yaml:"extensions"`
	MaxWarnings   *int              `toml:"max-warnings" yaml:"max-warnings"`
	IgnorePattern string            `toml:"ignore-pattern" yaml:"ignore-pattern"`
	Rules         map[string]string `toml:"rules" yaml:"rules"`
	Options       rules.OptionSet   `toml:"options" yaml:"options"`
}

// Default returns the configuration used when no config file exists:
// every registered rule at its default severity.
func Default() *Config {
	cfg := &Config{
		Extensions:    append([]string(nil), DefaultExtensions...),
		MaxWarnings:   -1,
		Rules:         make(map[string]diag.Severity),
		Options:       rules.DefaultOptions(),
		IgnorePattern: regexp.MustCompile(DefaultIgnorePattern),
	}
	for _, r := range rules.All() {
		meta := r.Meta()
		cfg.Rules[meta.Name] = meta.DefaultSeverity
	}
	return cfg
}

// Load reads and validates a config file. The format is picked by
// extension: .toml, .yaml, or .yml.
func Load(path string) (*Config, error) {
	var raw fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := decodeTOML(path, &raw); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := decodeYAML(path, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format %q", path, filepath.Ext(path))
	}
	cfg, err := raw.validate(path)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Discover walks up from startDir looking for a config file and loads
// the first one found. ok is false when no ancestor carries one.
func Discover(startDir string) (cfg *Config, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range fileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				cfg, err := Load(candidate)
				if err != nil {
					return nil, true, err
				}
				return cfg, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return nil, false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, false, nil
}

func decodeTOML(path string, raw *fileConfig) error {
	meta, err := toml.DecodeFile(path, raw)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: unknown config key %q", path, undecoded[0].String())
	}
	return nil
}

func decodeYAML(path string, raw *fileConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	return nil
}

// validate merges the raw file over the defaults and rejects anything
// the engine could not act on.
func (raw *fileConfig) validate(path string) (*Config, error) {
	cfg := Default()

	if len(raw.Extensions) > 0 {
		exts := make([]string, 0, len(raw.Extensions))
		for _, ext := range raw.Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				return nil, fmt.Errorf("%s: empty entry in extensions", path)
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		cfg.Extensions = exts
	}

	if raw.MaxWarnings != nil {
		if *raw.MaxWarnings < -1 {
			return nil, fmt.Errorf("%s: max-warnings must be -1 or greater, got %d", path, *raw.MaxWarnings)
		}
		cfg.MaxWarnings = *raw.MaxWarnings
	}

	if raw.IgnorePattern != "" {
		re, err := regexp.Compile(raw.IgnorePattern)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid ignore-pattern: %w", path, err)
		}
		cfg.IgnorePattern = re
	}

	for id, sevStr := range raw.Rules {
		if _, ok := rules.Get(id); !ok {
			return nil, fmt.Errorf("%s: unknown rule %q", path, id)
		}
		sev, ok := diag.ParseSeverity(sevStr)
		if !ok {
			return nil, fmt.Errorf("%s: invalid severity %q for rule %q", path, sevStr, id)
		}
		cfg.Rules[id] = sev
	}

	if p := raw.Options.NoUnusedVars.IgnorePattern; p != "" {
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("%s: invalid no-unused-vars ignore-pattern: %w", path, err)
		}
	}
	opts := raw.Options
	cfg.Options = &opts

	return cfg, nil
}

// Enabled reports whether the rule runs at all under this config.
func (c *Config) Enabled(rule string) bool {
	return c.Rules[rule] != diag.SevOff
}

// LintsPath reports whether the path's extension is in scope.
func (c *Config) LintsPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Fingerprint renders the config as a canonical string for cache keys.
// Two configs with the same fingerprint produce identical verdicts.
func (c *Config) Fingerprint() string {
	var sb strings.Builder
	sb.WriteString("ext=")
	sb.WriteString(strings.Join(c.Extensions, ","))
	fmt.Fprintf(&sb, ";maxwarn=%d", c.MaxWarnings)
	fmt.Fprintf(&sb, ";ignore=%s", c.IgnorePattern.String())
	ids := make([]string, 0, len(c.Rules))
	for id := range c.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(&sb, ";rule:%s=%s", id, c.Rules[id])
	}
	fmt.Fprintf(&sb, ";opt:no-unused-vars.ignore=%s", c.Options.NoUnusedVars.IgnorePattern)
	fmt.Fprintf(&sb, ";opt:no-console.allow=%s", strings.Join(c.Options.NoConsole.Allow, ","))
	return sb.String()
}
