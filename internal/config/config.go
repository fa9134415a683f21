// Package config loads methodex settings.
//
// Settings are layered, highest priority first:
//  1. Environment variables (METHODEX_*, nested keys joined with "_")
//  2. Project config (<project>/.methodex/config.yml)
//  3. User config (~/.methodex/config.yml)
//  4. Built-in defaults
//
// Command-line flags override all of these in the CLI.
package config

// Config represents the complete methodex configuration.
type Config struct {
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ExtractConfig controls discovery and the extraction job.
type ExtractConfig struct {
	Extensions     []string `yaml:"extensions" mapstructure:"extensions"`           // used when --ext is omitted
	Ignore         []string `yaml:"ignore" mapstructure:"ignore"`                   // glob patterns relative to the project root
	Workers        int      `yaml:"workers" mapstructure:"workers"`                 // 0 or 1 = sequential
	FollowSymlinks bool     `yaml:"follow_symlinks" mapstructure:"follow_symlinks"` // descend into symlinked dirs
}

// OutputConfig controls the result sink.
type OutputConfig struct {
	Mode   string `yaml:"mode" mapstructure:"mode"`     // "truncate" or "append"
	Format string `yaml:"format" mapstructure:"format"` // "text" or "sqlite"
}

// WatchConfig controls extract --watch.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Extract: ExtractConfig{
			Extensions: []string{"java"},
			Ignore: []string{
				".git/**",
				".methodex/**",
				"node_modules/**",
				"vendor/**",
				"target/**",
				"build/**",
				"dist/**",
				"__pycache__/**",
			},
			Workers:        0,
			FollowSymlinks: true,
		},
		Output: OutputConfig{
			Mode:   "truncate",
			Format: "text",
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
