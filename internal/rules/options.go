package rules

// OptionSet holds typed per-rule options. The config loader decodes directly
// into this struct so unknown option keys fail at load time rather than
// being silently ignored.
type OptionSet struct {
	NoUnusedVars NoUnusedVarsOptions `toml:"no-unused-vars" yaml:"no-unused-vars"`
	NoConsole    NoConsoleOptions    `toml:"no-console" yaml:"no-console"`
}

// NoUnusedVarsOptions tunes the unused-binding check.
type NoUnusedVarsOptions struct {
	// IgnorePattern exempts matching binding names; defaults to ^_ when
	// empty.
	IgnorePattern string `toml:"ignore-pattern" yaml:"ignore-pattern"`
}

// NoConsoleOptions tunes the console check.
type NoConsoleOptions struct {
	// Allow lists console methods that may be called, e.g. "warn".
	Allow []string `toml:"allow" yaml:"allow"`
}

// DefaultOptions returns the option set used when the config names none.
func DefaultOptions() *OptionSet {
	return &OptionSet{}
}
