// Package config loads docgraph configuration from TOML files and
// environment variables, in precedence order system < user < project <
// environment.
package config

import "os"

// DefaultDirPermissions for created config directories
const DefaultDirPermissions os.FileMode = 0755

// Config is the docgraph configuration
type Config struct {
	// Verbosity controls log detail (0 = warnings, 1 = info, 2+ = debug)
	Verbosity int `mapstructure:"verbosity"`

	// JSONLogs switches log output from console format to JSON
	JSONLogs bool `mapstructure:"json_logs"`

	Build BuildConfig `mapstructure:"build"`
}

// BuildConfig configures the documentation build pipeline
type BuildConfig struct {
	// MergePrecedence picks the winning side for merge conflicts with no
	// fixed rule: "live" or "static"
	MergePrecedence string `mapstructure:"merge_precedence"`

	// UniversalBase is the dotted name of the class C3 linearization is
	// rooted at
	UniversalBase string `mapstructure:"universal_base"`

	// Progress selects the progress emitter: "cli", "json" or "none"
	Progress string `mapstructure:"progress"`
}
